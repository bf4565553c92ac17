package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-omen/midi"
	"go-omen/rack"
	"go-omen/seed"
	"go-omen/theme"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (Model, *rack.Rack) {
	t.Helper()
	r, err := rack.DefaultPatch().Build()
	require.NoError(t, err)
	return NewModel(r, nil, theme.New(nil), "test"), r
}

func oracleOf(t *testing.T, r *rack.Rack) *rack.Oracle {
	t.Helper()
	m, err := r.Module(r.Origin())
	require.NoError(t, err)
	o, ok := m.(*rack.Oracle)
	require.True(t, ok)
	return o
}

func TestSeedKeysPressButtons(t *testing.T) {
	m, r := newTestModel(t)

	m.Update(keyMsg("1"))
	r.Run(100)
	m.Update(keyMsg("6"))
	r.Run(100)

	cfg := oracleOf(t, r).Configuration()
	assert.Equal(t, seed.B, cfg[0])
	assert.Equal(t, seed.B, cfg[5])
	assert.Equal(t, seed.A, cfg[2])
}

func TestClockAndResetKeys(t *testing.T) {
	m, r := newTestModel(t)

	m.Update(keyMsg("c"))
	r.Run(100)
	m.Update(keyMsg("c"))
	r.Run(100)
	assert.Equal(t, uint32(2), oracleOf(t, r).Tick())

	m.Update(keyMsg("x"))
	r.Run(100)
	assert.Zero(t, oracleOf(t, r).Tick())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestTickTakesSnapshot(t *testing.T) {
	m, r := newTestModel(t)
	r.Run(10)

	next, cmd := m.Update(TickMsg(time.Now()))
	assert.NotNil(t, cmd)
	view := next.View()
	assert.Contains(t, view, "oracle")
	assert.Contains(t, view, "moira")
	assert.Contains(t, view, "randomize")
}

func TestSavedStatus(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(SavedMsg{File: "2026.json"})
	assert.Contains(t, next.View(), "saved 2026.json")

	next, _ = next.Update(SavedMsg{Err: errors.New("disk full")})
	assert.Contains(t, next.View(), "save failed: disk full")
}

func TestDeviceEvents(t *testing.T) {
	m, _ := newTestModel(t)

	next, cmd := m.Update(DeviceEventMsg{Type: midi.DeviceConnected, Role: midi.RoleClock, ID: "IAC Bus 1"})
	assert.Nil(t, cmd, "no scanner to listen to")
	assert.Contains(t, next.(Model).header(), "clock:IAC Bus 1")

	next, _ = next.Update(DeviceEventMsg{Type: midi.DeviceDisconnected, Role: midi.RoleClock, ID: "IAC Bus 1"})
	assert.NotContains(t, next.(Model).header(), "IAC Bus 1")
}

type capturer struct {
	Rack
	st  *rack.State
	err error
}

func (c capturer) Capture(context.Context) (*rack.State, error) {
	return c.st, c.err
}

func TestSaveCmdWritesProject(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	r, err := rack.DefaultPatch().Build()
	require.NoError(t, err)
	st, err := r.State()
	require.NoError(t, err)

	msg := saveCmd(capturer{st: st}, "live")()
	saved, ok := msg.(SavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)

	dir, err := rack.ProjectDir("live")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, saved.File))
	assert.NoError(t, err)
}

func TestSaveCmdCaptureError(t *testing.T) {
	msg := saveCmd(capturer{err: context.DeadlineExceeded}, "live")()
	assert.ErrorIs(t, msg.(SavedMsg).Err, context.DeadlineExceeded)
}
