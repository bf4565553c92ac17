package rack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ModuleRecord is one module in a saved rack.
type ModuleRecord struct {
	ID     uuid.UUID          `json:"id"`
	Kind   Kind               `json:"kind"`
	Name   string             `json:"name,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
	Data   json.RawMessage    `json:"data,omitempty"`
}

// State is a saved rack: layout, cables and every module's own state.
type State struct {
	SampleRate float64        `json:"sampleRate"`
	Modules    []ModuleRecord `json:"modules"`
	Cables     []Cable        `json:"cables,omitempty"`
	Triggers   []Trigger      `json:"triggers,omitempty"`
	Tap        *Tap           `json:"tap,omitempty"`
}

// State captures the rack. Call it only while nothing is rendering; use
// Capture from other goroutines.
func (r *Rack) State() (*State, error) {
	st := &State{
		SampleRate: r.sampleRate,
		Modules:    make([]ModuleRecord, len(r.modules)),
		Cables:     append([]Cable(nil), r.cables...),
		Triggers:   r.Watches(),
	}
	if r.tap.Module >= 0 {
		tap := r.tap
		st.Tap = &tap
	}
	for i, m := range r.modules {
		b := m.Base()
		data, err := m.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i, b.Kind, err)
		}
		st.Modules[i] = ModuleRecord{
			ID:     b.ID,
			Kind:   b.Kind,
			Name:   b.Name,
			Params: b.ParamValues(),
			Data:   data,
		}
	}
	return st, nil
}

// Capture asks the rendering goroutine for a State.
func (r *Rack) Capture(ctx context.Context) (*State, error) {
	reply := make(chan *State, 1)
	if !r.Send(Command{Kind: CmdCapture, Reply: reply}) {
		return nil, errors.New("rack command queue full")
	}
	select {
	case st := <-reply:
		if st == nil {
			return nil, errors.New("rack capture failed")
		}
		return st, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FromState rebuilds a rack. Missing fields keep their defaults; unknown
// kinds and params are errors.
func FromState(st *State) (*Rack, error) {
	r := NewRack(st.SampleRate)
	for i, rec := range st.Modules {
		m, err := New(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		b := m.Base()
		if rec.ID != uuid.Nil {
			b.ID = rec.ID
		}
		if rec.Name != "" {
			b.Name = rec.Name
		}
		if err := b.SetParamValues(rec.Params); err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		if len(rec.Data) > 0 {
			if err := m.UnmarshalJSON(rec.Data); err != nil {
				return nil, fmt.Errorf("module %d: %w", i, err)
			}
		}
		r.Add(m)
	}
	for _, c := range st.Cables {
		if err := r.Connect(c); err != nil {
			return nil, fmt.Errorf("cable: %w", err)
		}
	}
	for _, t := range st.Triggers {
		if err := r.Watch(t); err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
	}
	if st.Tap != nil {
		if err := r.SetTap(*st.Tap); err != nil {
			return nil, fmt.Errorf("tap: %w", err)
		}
	}
	r.publish()
	return r, nil
}
