package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
zones:
  - id: sidebar
    width: small
    components: [clock, weather]
  - id: content
    width: 720
components:
  - id: clock
    kind: clock
    title: World Clock
activation:
  mode: long-press
  delay: 750ms
  tolerance: 8
store:
  driver: sqlite
  path: /tmp/layouts.db
  layout_id: home
log:
  level: debug
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "dashgrid.yaml", sampleYAML))
	require.NoError(t, err)

	require.Len(t, cfg.Zones, 2)
	assert.Equal(t, domain.TokenWidth(domain.WidthSmall), cfg.Zones[0].Width)
	assert.Equal(t, []string{"clock", "weather"}, cfg.Zones[0].Components)
	assert.Equal(t, domain.CustomWidth(720), cfg.Zones[1].Width)
	assert.Equal(t, "World Clock", cfg.Components[0].Title)

	policy, err := cfg.Activation.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.Delayed(750*time.Millisecond), policy)
	assert.Equal(t, 8.0, cfg.Activation.Tolerance)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "home", cfg.Store.LayoutID)
	assert.True(t, cfg.Store.Autosave, "unset keys keep their defaults")
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_JSON(t *testing.T) {
	cfg, err := Load(writeFile(t, "dashgrid.json", `{"zones":[{"id":"a","width":"full"}],"store":{"driver":"file","path":"./out"}}`))
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Zones[0].ID)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Zones[0].ID)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvPath, writeFile(t, "env.yaml", "zones:\n  - id: from-env\n    width: medium\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Zones[0].ID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad width":      "zones:\n  - id: a\n    width: huge\n",
		"negative width": "zones:\n  - id: a\n    width: -5\n",
		"unknown key":    "zones:\n  - id: a\n    width: small\nbogus: true\n",
		"redis no addr":  "store:\n  driver: redis\n",
		"bad driver":     "store:\n  driver: floppy\n",
		"bad mode":       "activation:\n  mode: hover\n",
		"bad delay":      "activation:\n  mode: delayed\n  delay: soon\n",
		"missing id":     "zones:\n  - width: small\n",
		"bad level":      "log:\n  level: loud\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_SampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "dashboard.yaml"))
	require.NoError(t, err)

	require.Len(t, cfg.Zones, 3)
	assert.Equal(t, domain.CustomWidth(240), cfg.Zones[2].Width)
	assert.Len(t, cfg.Components, 5)
	assert.Equal(t, "Lisbon", cfg.Components[1].Props["city"])

	policy, err := cfg.Activation.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.Delayed(750*time.Millisecond), policy)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
}
