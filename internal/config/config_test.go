package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.False(t, cfg.Headless)
	require.Equal(t, 1920, cfg.ViewportWidth)
	require.Equal(t, "zh-CN", cfg.Locale)
	require.Equal(t, "mentionlab.db", cfg.Database)
}

func TestLoadPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentionlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
headless: true
response_timeout_ms: 60000
database: /tmp/custom.db
selector_overrides: selectors.yaml
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Headless)
	require.Equal(t, "/tmp/custom.db", cfg.Database)
	require.Equal(t, "selectors.yaml", cfg.SelectorOverrides)
	require.Equal(t, 60*time.Second, cfg.ResponseTimeout())

	// Unset fields keep their defaults.
	require.Equal(t, 1080, cfg.ViewportHeight)
	require.Equal(t, "Asia/Shanghai", cfg.Timezone)
	require.Equal(t, 2*time.Second, cfg.SettleDelay())
	require.Equal(t, 2*time.Second, cfg.AskDelay())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentionlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: [what"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	require.Equal(t, 30*time.Second, cfg.NavigationTimeout())
	require.Equal(t, 30*time.Second, cfg.ResponseTimeout())
}
