package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-omen/midi"
	"go-omen/rack"
	"go-omen/theme"
	"go-omen/widgets"
)

// RefreshRate is how often the monitor redraws from the rack snapshot.
const RefreshRate = 33 * time.Millisecond

// Rack is what the monitor drives. *rack.Rack satisfies it.
type Rack interface {
	midi.Target
	Snapshot() *rack.Snapshot
	Capture(ctx context.Context) (*rack.State, error)
	Origin() int
}

type Model struct {
	Rack     Rack
	Scanner  *midi.Scanner // may be nil
	Theme    *theme.Theme
	Project  string
	snap     *rack.Snapshot
	help     help.Model
	devices  map[string]midi.DeviceRole
	status   string
	quitting bool
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

// SavedMsg reports the result of a save.
type SavedMsg struct {
	File string
	Err  error
}

func NewModel(r Rack, scanner *midi.Scanner, th *theme.Theme, project string) Model {
	return Model{
		Rack:    r,
		Scanner: scanner,
		Theme:   th,
		Project: project,
		help:    newHelp(th),
		devices: make(map[string]midi.DeviceRole),
	}
}

func newHelp(th *theme.Theme) help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.FG())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.Muted())
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(th.Muted())
	return h
}

func tick() tea.Cmd {
	return tea.Tick(RefreshRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func ListenForDevices(scanner *midi.Scanner) tea.Cmd {
	if scanner == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-scanner.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func saveCmd(r Rack, project string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		st, err := r.Capture(ctx)
		if err != nil {
			return SavedMsg{Err: err}
		}
		file, err := rack.SaveProject(project, "", st)
		return SavedMsg{File: file, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), ListenForDevices(m.Scanner))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Seed):
			m.Rack.Press(int(msg.String()[0] - '1'))

		case key.Matches(msg, keys.Clock):
			m.Rack.Clock()

		case key.Matches(msg, keys.Reset):
			m.Rack.Reset()

		case key.Matches(msg, keys.Randomize):
			m.Rack.Randomize()

		case key.Matches(msg, keys.Save):
			m.status = "saving..."
			return m, saveCmd(m.Rack, m.Project)
		}

	case TickMsg:
		m.snap = m.Rack.Snapshot()
		return m, tick()

	case SavedMsg:
		if msg.Err != nil {
			m.status = "save failed: " + msg.Err.Error()
		} else {
			m.status = "saved " + msg.File
		}

	case DeviceEventMsg:
		if msg.Type == midi.DeviceConnected {
			m.devices[msg.ID] = msg.Role
		} else {
			delete(m.devices, msg.ID)
		}
		return m, ListenForDevices(m.Scanner)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Width(8)
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("\n\n")

	if m.snap != nil {
		for _, ms := range m.snap.Modules {
			out.WriteString(m.linkSymbol(ms))
			out.WriteString(" ")
			out.WriteString(nameStyle.Render(ms.Name))
			for _, l := range ms.Lights {
				out.WriteString(widgets.RenderLight(l.R, l.G, l.B, m.Theme.Symbols.LightOn, m.Theme.Symbols.LightOff))
			}
			if len(ms.Outputs) > 0 {
				out.WriteString(" ")
				out.WriteString(widgets.RenderMeter(ms.Outputs[len(ms.Outputs)-1], 10, 9))
			}
			out.WriteString("  ")
			out.WriteString(dimStyle.Render(ms.Summary))
			out.WriteString("\n")
		}
	}

	out.WriteString("\n")
	out.WriteString(m.help.View(keys))
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}

func (m Model) header() string {
	h := "go-omen"
	if m.snap != nil {
		h += fmt.Sprintf("  %s  frame:%d", m.snap.Time.Truncate(100*time.Millisecond), m.snap.Frame)
		if o := m.Rack.Origin(); o >= 0 && o < len(m.snap.Modules) {
			h += fmt.Sprintf("  seed:%d", m.snap.Modules[o].Seed)
		}
	}
	if m.Scanner != nil {
		if c := m.Scanner.Clock(); c != nil {
			h += fmt.Sprintf("  %.1fbpm", c.BPM())
		}
	}
	ids := make([]string, 0, len(m.devices))
	for id := range m.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h += fmt.Sprintf("  %s:%s", m.devices[id], id)
	}
	return h
}

func (m Model) linkSymbol(ms rack.ModuleSnapshot) string {
	switch {
	case ms.Kind == rack.KindOracle:
		return string(m.Theme.Symbols.Origin)
	case ms.Connected:
		return string(m.Theme.Symbols.Linked)
	}
	return string(m.Theme.Symbols.Unlinked)
}
