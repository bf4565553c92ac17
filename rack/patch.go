package rack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-omen/seed"
)

// Patch is the hand-editable rack description: modules in chain order,
// their knob settings, the cables between them and what goes to audio and
// MIDI.
type Patch struct {
	SampleRate float64        `yaml:"sampleRate,omitempty"`
	Modules    []PatchModule  `yaml:"modules"`
	Cables     []PatchCable   `yaml:"cables,omitempty"`
	Triggers   []PatchTrigger `yaml:"triggers,omitempty"`
	Tap        *PatchPort     `yaml:"tap,omitempty"`
}

type PatchModule struct {
	Kind    Kind               `yaml:"kind"`
	Name    string             `yaml:"name,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Inputs  map[string]float64 `yaml:"inputs,omitempty"`
	Options map[string]bool    `yaml:"options,omitempty"`
	// Seed sets an oracle's buttons, e.g. "ABFCAA".
	Seed string `yaml:"seed,omitempty"`
}

// PatchPort names a port on a module by slot and port name.
type PatchPort struct {
	Module int    `yaml:"module"`
	Port   string `yaml:"port"`
}

type PatchCable struct {
	From PatchPort `yaml:"from"`
	To   PatchPort `yaml:"to"`
}

type PatchTrigger struct {
	PatchPort `yaml:",inline"`
	Note      uint8 `yaml:"note"`
}

// DefaultPatch is an oracle driving a quarter-note Kron, whose pulses
// trigger a Moira and gate a Fate, with a Tale at the end of the chain.
func DefaultPatch() *Patch {
	return &Patch{
		SampleRate: DefaultSampleRate,
		Modules: []PatchModule{
			{Kind: KindOracle, Seed: "AAAAAA"},
			{Kind: KindKron, Params: map[string]float64{"density": 60, "division": 3}},
			{Kind: KindMoira, Params: map[string]float64{"x": -2, "y": 0, "z": 3, "fade": 0.05}},
			{Kind: KindFate, Params: map[string]float64{"bias": 50}},
			{Kind: KindBlank},
			{Kind: KindTale, Params: map[string]float64{"pace": 0.3}},
		},
		Cables: []PatchCable{
			{From: PatchPort{Module: 1, Port: "out"}, To: PatchPort{Module: 2, Port: "trigger"}},
			{From: PatchPort{Module: 1, Port: "out"}, To: PatchPort{Module: 3, Port: "in"}},
		},
		Triggers: []PatchTrigger{
			{PatchPort: PatchPort{Module: 1, Port: "out"}, Note: 36},
			{PatchPort: PatchPort{Module: 3, Port: "a"}, Note: 38},
			{PatchPort: PatchPort{Module: 3, Port: "b"}, Note: 42},
		},
		Tap: &PatchPort{Module: 2, Port: "out"},
	}
}

// LoadPatch reads a YAML patch file.
func LoadPatch(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse patch %s: %w", path, err)
	}
	return &p, nil
}

// Write saves the patch as YAML.
func (p *Patch) Write(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write patch: %w", err)
	}
	return nil
}

// Build creates the rack the patch describes.
func (p *Patch) Build() (*Rack, error) {
	r := NewRack(p.SampleRate)

	for i, pm := range p.Modules {
		m, err := New(pm.Kind)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		b := m.Base()
		if pm.Name != "" {
			b.Name = pm.Name
		}
		if err := b.SetParamValues(pm.Params); err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		for name, v := range pm.Inputs {
			in, err := b.InputIndex(name)
			if err != nil {
				return nil, fmt.Errorf("module %d: %w", i, err)
			}
			b.Inputs[in].Connect(1)
			b.Inputs[in].SetVoltage(v)
		}
		if len(pm.Options) > 0 {
			c, ok := m.(Configurable)
			if !ok {
				return nil, fmt.Errorf("module %d: %s takes no options", i, pm.Kind)
			}
			for name, on := range pm.Options {
				if err := c.SetOption(name, on); err != nil {
					return nil, fmt.Errorf("module %d: %w", i, err)
				}
			}
		}
		if pm.Seed != "" {
			o, ok := m.(*Oracle)
			if !ok {
				return nil, fmt.Errorf("module %d: only an oracle takes a seed", i)
			}
			cfg, err := seed.Parse(pm.Seed)
			if err != nil {
				return nil, fmt.Errorf("module %d: %w", i, err)
			}
			o.SetConfiguration(cfg)
		}
		r.Add(m)
	}

	for _, c := range p.Cables {
		out, err := p.output(r, c.From)
		if err != nil {
			return nil, fmt.Errorf("cable: %w", err)
		}
		in, err := p.input(r, c.To)
		if err != nil {
			return nil, fmt.Errorf("cable: %w", err)
		}
		if err := r.Connect(Cable{From: c.From.Module, Output: out, To: c.To.Module, Input: in}); err != nil {
			return nil, fmt.Errorf("cable: %w", err)
		}
	}

	for _, t := range p.Triggers {
		out, err := p.output(r, t.PatchPort)
		if err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
		if err := r.Watch(Trigger{Module: t.Module, Output: out, Note: t.Note}); err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
	}

	if p.Tap != nil {
		out, err := p.output(r, *p.Tap)
		if err != nil {
			return nil, fmt.Errorf("tap: %w", err)
		}
		if err := r.SetTap(Tap{Module: p.Tap.Module, Output: out}); err != nil {
			return nil, fmt.Errorf("tap: %w", err)
		}
	}

	r.publish()
	return r, nil
}

func (p *Patch) output(r *Rack, pp PatchPort) (int, error) {
	m, err := r.Module(pp.Module)
	if err != nil {
		return -1, err
	}
	return m.Base().OutputIndex(pp.Port)
}

func (p *Patch) input(r *Rack, pp PatchPort) (int, error) {
	m, err := r.Module(pp.Module)
	if err != nil {
		return -1, err
	}
	return m.Base().InputIndex(pp.Port)
}
