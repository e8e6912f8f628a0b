package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/dashgrid"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *dashgrid.Engine) {
	t.Helper()
	eng, err := dashgrid.New([]domain.ZoneDescriptor{
		{ID: "main", Width: domain.TokenWidth(domain.WidthFull), Components: []string{"clock"}},
		{ID: "side", Width: domain.TokenWidth(domain.WidthSmall)},
	})
	require.NoError(t, err)
	return NewServer(eng, "test", nil), eng
}

func TestGetLayout(t *testing.T) {
	s, eng := newTestServer(t)

	res, err := s.handleGetLayout(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var snap domain.LayoutSnapshot
	require.NoError(t, json.Unmarshal([]byte(text.Text), &snap))
	assert.True(t, snap.Equal(eng.Layout()))
}

func TestMoveComponent(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleMove(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"component_id": "clock", "from": "main", "to": "side",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"clock"}, resp.Layout.Zones["side"].Components)
	assert.Equal(t, []string{"clock"}, eng.Layout().Zones["side"].Components)

	_, err = s.handleMove(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"component_id": "clock", "from": "side", "to": "missing",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownZone)

	_, err = s.handleMove(ctx, mcp.CallToolRequest{}, map[string]interface{}{"from": "side", "to": "main"})
	assert.Error(t, err)
}

func TestZoneTools(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleAddZone(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"width": "medium", "components": `["news","stocks"]`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ZoneID)
	assert.Equal(t, []string{"news", "stocks"}, resp.Layout.Zones[resp.ZoneID].Components)

	_, err = s.handleAddZone(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"width": "small", "components": `["news"]`,
	})
	assert.ErrorIs(t, err, domain.ErrComponentPlaced)

	_, err = s.handleAddZone(ctx, mcp.CallToolRequest{}, map[string]interface{}{"width": "tiny"})
	assert.ErrorIs(t, err, domain.ErrInvalidWidth)

	_, err = s.handleChangeWidth(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"zone_id": resp.ZoneID, "width": 240.0,
	})
	require.NoError(t, err)
	z, _ := eng.Zone(resp.ZoneID)
	assert.Equal(t, domain.CustomWidth(240), z.Width)

	resp, err = s.handleRemoveZone(ctx, mcp.CallToolRequest{}, map[string]interface{}{"zone_id": resp.ZoneID})
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "side"}, resp.Layout.Order)
	assert.Equal(t, []string{"clock", "news", "stocks"}, resp.Layout.Zones["main"].Components)

	_, err = s.handleRemoveZone(ctx, mcp.CallToolRequest{}, map[string]interface{}{"zone_id": "nope"})
	assert.ErrorIs(t, err, domain.ErrUnknownZone)
}

func TestLayoutResource(t *testing.T) {
	s, _ := newTestServer(t)

	contents, err := s.readLayout(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, LayoutURI, text.URI)
	assert.Contains(t, text.Text, `"order":["main","side"]`)
}
