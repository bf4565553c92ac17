package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-omen/debug"
	"go-omen/rack"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceRole says what a port is used for.
type DeviceRole int

const (
	RoleClock DeviceRole = iota
	RoleTrigger
	RolePanel
)

func (r DeviceRole) String() string {
	switch r {
	case RoleClock:
		return "clock"
	case RoleTrigger:
		return "trigger"
	case RolePanel:
		return "panel"
	}
	return "unknown"
}

// DeviceEvent is emitted when a port is opened or lost.
type DeviceEvent struct {
	Type DeviceEventType
	Role DeviceRole
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// ScannerConfig selects ports by case-insensitive substring. An empty name
// disables that role.
type ScannerConfig struct {
	ClockPort   string
	TriggerPort string
	Panel       bool
	Origin      int
	PanelRate   time.Duration
}

type panelConn struct {
	ctrl   Controller
	cancel context.CancelFunc
	done   chan struct{}
}

// Scanner polls the MIDI ports and opens or closes the clock input, the
// trigger output and any grid panels as devices come and go.
type Scanner struct {
	cfg      ScannerConfig
	target   Target
	triggers *TriggerOut
	snapshot func() *rack.Snapshot

	mu       sync.RWMutex
	clock    *ClockInput
	trigger  string
	panels   map[string]*panelConn
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewScanner creates a scanner. triggers may be nil when no trigger port
// is wanted; snapshot feeds the panel lights.
func NewScanner(cfg ScannerConfig, target Target, triggers *TriggerOut, snapshot func() *rack.Snapshot) *Scanner {
	if cfg.PanelRate <= 0 {
		cfg.PanelRate = 33 * time.Millisecond
	}
	return &Scanner{
		cfg:      cfg,
		target:   target,
		triggers: triggers,
		snapshot: snapshot,
		panels:   make(map[string]*panelConn),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (s *Scanner) Events() <-chan DeviceEvent {
	return s.events
}

// Clock returns the open clock input, or nil.
func (s *Scanner) Clock() *ClockInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// Run polls until ctx is done (blocking - run in goroutine)
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollRate)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			close(s.events)
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scanner) scan(ctx context.Context) {
	// CoreMIDI can hang while listing ports
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out
	select {
	case result := <-ch:
		inPorts, outPorts = result.inPorts, result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seen := make(map[string]bool)
	for _, p := range inPorts {
		seen["in:"+p.String()] = true
	}
	for _, p := range outPorts {
		seen["out:"+p.String()] = true
	}

	s.scanClock(inPorts)
	s.scanTrigger(outPorts)
	if s.cfg.Panel {
		s.scanPanels(ctx, inPorts, outPorts)
	}
	s.dropMissing(seen)
}

func (s *Scanner) scanClock(inPorts []drivers.In) {
	if s.cfg.ClockPort == "" || s.Clock() != nil {
		return
	}
	for _, p := range inPorts {
		if !matchPort(p.String(), s.cfg.ClockPort) {
			continue
		}
		c, err := OpenClockInput(p.String(), p, s.target)
		if err != nil {
			debug.Log("midi", "clock %s: %v", p.String(), err)
			return
		}
		s.mu.Lock()
		s.clock = c
		s.mu.Unlock()
		s.emit(DeviceEvent{Type: DeviceConnected, Role: RoleClock, ID: c.ID()})
		return
	}
}

func (s *Scanner) scanTrigger(outPorts []drivers.Out) {
	if s.triggers == nil || s.cfg.TriggerPort == "" {
		return
	}
	if _, ok := s.triggers.Attached(); ok {
		return
	}
	for _, p := range outPorts {
		if !matchPort(p.String(), s.cfg.TriggerPort) {
			continue
		}
		if err := s.triggers.AttachPort(p.String(), p); err != nil {
			debug.Log("midi", "trigger %s: %v", p.String(), err)
			return
		}
		s.mu.Lock()
		s.trigger = p.String()
		s.mu.Unlock()
		s.emit(DeviceEvent{Type: DeviceConnected, Role: RoleTrigger, ID: p.String()})
		return
	}
}

func (s *Scanner) scanPanels(ctx context.Context, inPorts []drivers.In, outPorts []drivers.Out) {
	for i, inPort := range inPorts {
		id := inPort.String()
		if !isLaunchpad(id) {
			continue
		}
		s.mu.RLock()
		_, exists := s.panels[id]
		s.mu.RUnlock()
		if exists {
			continue
		}

		var outPort drivers.Out
		for j, op := range outPorts {
			if strings.EqualFold(op.String(), id) {
				outPort = outPorts[j]
				break
			}
		}
		lp, err := NewLaunchpadController(id, inPorts[i], outPort)
		if err != nil {
			debug.Log("panel", "%s: %v", id, err)
			continue
		}

		pctx, cancel := context.WithCancel(ctx)
		conn := &panelConn{ctrl: lp, cancel: cancel, done: make(chan struct{})}
		go func() {
			defer close(conn.done)
			NewPanel(lp, s.target).Run(pctx, s.snapshot, s.cfg.Origin, s.cfg.PanelRate)
		}()

		s.mu.Lock()
		s.panels[id] = conn
		s.mu.Unlock()
		s.emit(DeviceEvent{Type: DeviceConnected, Role: RolePanel, ID: id})
	}
}

func (s *Scanner) dropMissing(seen map[string]bool) {
	s.mu.Lock()
	var lost []DeviceEvent
	if s.clock != nil && !seen["in:"+s.clock.ID()] {
		s.clock.Close()
		lost = append(lost, DeviceEvent{Type: DeviceDisconnected, Role: RoleClock, ID: s.clock.ID()})
		s.clock = nil
	}
	if s.trigger != "" && !seen["out:"+s.trigger] {
		s.triggers.Detach(s.trigger)
		lost = append(lost, DeviceEvent{Type: DeviceDisconnected, Role: RoleTrigger, ID: s.trigger})
		s.trigger = ""
	}
	for id, conn := range s.panels {
		if seen["in:"+id] {
			continue
		}
		conn.stop()
		delete(s.panels, id)
		lost = append(lost, DeviceEvent{Type: DeviceDisconnected, Role: RolePanel, ID: id})
	}
	s.mu.Unlock()

	for _, e := range lost {
		s.emit(e)
	}
}

func (s *Scanner) emit(e DeviceEvent) {
	debug.Log("midi", "%s %s: %v", e.Role, e.ID, e.Type == DeviceConnected)
	select {
	case s.events <- e:
	default:
	}
}

func (s *Scanner) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Close()
		s.clock = nil
	}
	if s.trigger != "" {
		s.triggers.Detach(s.trigger)
		s.trigger = ""
	}
	for _, conn := range s.panels {
		conn.stop()
	}
	s.panels = make(map[string]*panelConn)
}

func (c *panelConn) stop() {
	c.cancel()
	<-c.done
	c.ctrl.Close()
}

// matchPort reports whether want is a case-insensitive substring of name.
func matchPort(name, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}
