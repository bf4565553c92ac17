package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"midi":{"clockPort":"IAC Bus 1","channel":40}}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "IAC Bus 1", cfg.MIDI.ClockPort)
	assert.Equal(t, uint8(15), cfg.MIDI.Channel)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.True(t, cfg.Audio.Enabled)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Patch = "live.yaml"
	cfg.Debug = true
	require.NoError(t, cfg.SaveTo(path))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestConfigDirUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", AppName), dir)
}
