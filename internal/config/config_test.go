package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FallbacksWhenNothingSet(t *testing.T) {
	t.Setenv("BROWSER", "")
	t.Setenv("PLAYER", "")
	t.Setenv("EDITOR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, "mpv", cfg.Media)
	assert.Equal(t, "nano", cfg.Editor)
	assert.Equal(t, "xterm", cfg.Terminal)
	assert.Equal(t, "espeak", cfg.Speech)
	assert.Equal(t, 8*time.Second, cfg.Timeout)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("BROWSER", "chromium")
	t.Setenv("EDITOR", "vi")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "chromium", cfg.Browser)
	assert.Equal(t, "vi", cfg.Editor)
}

func TestLoad_OverridesFileWinsOverEnvironment(t *testing.T) {
	t.Setenv("BROWSER", "chromium")
	path := filepath.Join(t.TempDir(), "feedln.yml")
	require.NoError(t, os.WriteFile(path, []byte("browser: lynx\nreqtimeout: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lynx", cfg.Browser)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedln.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDerive_SiblingPaths(t *testing.T) {
	paths := Derive("/home/user/feeds.csv")
	assert.Equal(t, "/home/user/feeds.csv", paths.FeedFile)
	assert.Equal(t, "/home/user/feeds.db", paths.Database)
	assert.Equal(t, "/home/user/feeds.yml", paths.Settings)
	assert.Equal(t, "/home/user/feeds.log", paths.LogFile)
}

func TestDerive_NoExtension(t *testing.T) {
	paths := Derive("feeds")
	assert.Equal(t, "feeds.db", paths.Database)
}

func TestValidate(t *testing.T) {
	cfg := Config{Browser: "firefox", Timeout: time.Second}
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg.Timeout = time.Second
	cfg.Browser = "  "
	assert.Error(t, cfg.Validate())
}
