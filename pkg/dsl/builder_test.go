package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/dashgrid/pkg/domain"
)

func TestBuilder_SimpleLayout(t *testing.T) {
	// 1. Build the layout using DSL
	b := New()

	b.Add("sidebar").
		Small().
		Holds("clock", "weather")

	b.Add("main").
		Large().
		Holds("chart").
		Add("footer").
		Custom(120)

	// 2. Compile to descriptors
	zones, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// 3. Verify order and contents
	if len(zones) != 3 {
		t.Fatalf("Expected 3 zones, got %d", len(zones))
	}
	if zones[0].ID != "sidebar" || zones[1].ID != "main" || zones[2].ID != "footer" {
		t.Errorf("Unexpected zone order: %s, %s, %s", zones[0].ID, zones[1].ID, zones[2].ID)
	}
	if zones[0].Width != domain.TokenWidth(domain.WidthSmall) {
		t.Errorf("Expected sidebar width 'small', got '%s'", zones[0].Width)
	}
	if zones[2].Width != domain.CustomWidth(120) {
		t.Errorf("Expected footer width 120, got '%s'", zones[2].Width)
	}
	if len(zones[0].Components) != 2 || zones[0].Components[1] != "weather" {
		t.Errorf("Unexpected sidebar components: %v", zones[0].Components)
	}
}

func TestBuilder_AddReturnsExistingZone(t *testing.T) {
	b := New()
	b.Add("main").Holds("a")
	b.Add("main").Holds("b")

	zones, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(zones))
	}
	if zones[0].Width != domain.TokenWidth(domain.WidthMedium) {
		t.Errorf("Expected default width 'medium', got '%s'", zones[0].Width)
	}
	if got := zones[0].Components; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected components [a b], got %v", got)
	}
}

func TestBuilder_RejectsInvalidLayouts(t *testing.T) {
	b := New()
	b.Add("left").Holds("clock")
	b.Add("right").Holds("clock")
	if _, err := b.Build(); !errors.Is(err, domain.ErrComponentPlaced) {
		t.Errorf("Expected ErrComponentPlaced, got %v", err)
	}

	b = New()
	b.Add("main").Custom(-10)
	if _, err := b.Build(); !errors.Is(err, domain.ErrInvalidWidth) {
		t.Errorf("Expected ErrInvalidWidth, got %v", err)
	}
}

func TestBuilder_EngineWithDescribedComponents(t *testing.T) {
	b := New()
	b.Add("sidebar").Small().Holds("clock")
	b.Add("main").Full().Component(domain.ComponentDescriptor{ID: "chart", Kind: "timeseries", Title: "Traffic"})

	eng, err := b.Engine()
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	defer eng.Close()

	desc, ok := eng.GetComponent("chart")
	if !ok || desc.Title != "Traffic" {
		t.Errorf("Expected chart descriptor, got %+v (found=%v)", desc, ok)
	}
	if _, ok := eng.GetComponent("clock"); !ok {
		t.Errorf("Expected bare descriptor for clock")
	}
	if err := eng.MoveComponent("clock", "sidebar", "main"); err != nil {
		t.Fatalf("MoveComponent failed: %v", err)
	}
	if got := eng.Layout().Zones["main"].Components; len(got) != 2 || got[1] != "clock" {
		t.Errorf("Expected clock appended to main, got %v", got)
	}
}

func TestBuilder_EngineWithoutDescriptorsHasNoRegistry(t *testing.T) {
	b := New()
	b.Add("main").Holds("clock")

	eng, err := b.Engine()
	if err != nil {
		t.Fatalf("Engine() failed: %v", err)
	}
	defer eng.Close()

	if _, ok := eng.GetComponent("clock"); ok {
		t.Errorf("Expected no registry lookups without descriptors")
	}
}
