// Package rack is a small host for the module family: it owns ports and
// params, runs modules in chain order once per frame and services the chain
// link's buffer flips.
package rack

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"go-omen/chain"
)

// Kind identifies a module type.
type Kind string

const (
	KindOracle Kind = "oracle"
	KindFate   Kind = "fate"
	KindKron   Kind = "kron"
	KindMoira  Kind = "moira"
	KindTale   Kind = "tale"
	KindBlank  Kind = "blank"
)

// ProcessArgs describe the frame being rendered.
type ProcessArgs struct {
	SampleRate float64
	SampleTime float64
	Frame      int64
}

// Module is one unit in the rack. Persisted state goes through
// MarshalJSON/UnmarshalJSON; every field there is optional.
type Module interface {
	json.Marshaler
	json.Unmarshaler

	Base() *ModuleBase
	Process(host chain.Host, args ProcessArgs)
}

// Summarizer gives the monitor a one-line status.
type Summarizer interface {
	Summary() string
}

// Randomizer is implemented by modules that react to the randomize command.
type Randomizer interface {
	Randomize(seed uint64)
}

// Configurable modules accept named boolean options, e.g. Fate's latch.
type Configurable interface {
	SetOption(name string, on bool) error
}

// ModuleBase is the part every module shares: identity, params, ports, lights.
type ModuleBase struct {
	ID   uuid.UUID
	Kind Kind
	Name string

	Params  []Param
	Inputs  []Port
	Outputs []Port
	Lights  []Light
}

func newBase(kind Kind, params []Param, inputs, outputs []string, lights int) ModuleBase {
	b := ModuleBase{
		ID:      uuid.New(),
		Kind:    kind,
		Name:    string(kind),
		Params:  params,
		Inputs:  make([]Port, len(inputs)),
		Outputs: make([]Port, len(outputs)),
		Lights:  make([]Light, lights),
	}
	for i := range b.Params {
		b.Params[i].Set(b.Params[i].Default)
	}
	for i, n := range inputs {
		b.Inputs[i].Name = n
	}
	for i, n := range outputs {
		b.Outputs[i].Name = n
		b.Outputs[i].SetChannels(1)
	}
	return b
}

func (b *ModuleBase) Base() *ModuleBase {
	return b
}

func (b *ModuleBase) param(i int) float64 {
	return b.Params[i].Value()
}

// ParamIndex looks up a param by name, case-insensitively.
func (b *ModuleBase) ParamIndex(name string) (int, error) {
	if i := findParam(b.Params, name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%s has no param %q", b.Kind, name)
}

func (b *ModuleBase) InputIndex(name string) (int, error) {
	if i := findPort(b.Inputs, name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%s has no input %q", b.Kind, name)
}

func (b *ModuleBase) OutputIndex(name string) (int, error) {
	if i := findPort(b.Outputs, name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%s has no output %q", b.Kind, name)
}

// ParamValues returns every param by name, for patches and saves.
func (b *ModuleBase) ParamValues() map[string]float64 {
	out := make(map[string]float64, len(b.Params))
	for _, p := range b.Params {
		out[p.Name] = p.Value()
	}
	return out
}

// SetParamValues applies named values. Unknown names are an error; the
// known ones are still applied.
func (b *ModuleBase) SetParamValues(vals map[string]float64) error {
	var missing []string
	for name, v := range vals {
		i := findParam(b.Params, name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		b.Params[i].Set(v)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s: unknown params %v", b.Kind, missing)
	}
	return nil
}

var registry = map[Kind]func() Module{
	KindOracle: func() Module { return NewOracle() },
	KindFate:   func() Module { return NewFate() },
	KindKron:   func() Module { return NewKron() },
	KindMoira:  func() Module { return NewMoira() },
	KindTale:   func() Module { return NewTale() },
	KindBlank:  func() Module { return NewBlank() },
}

// New creates a module of the given kind.
func New(kind Kind) (Module, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown module kind %q", kind)
	}
	return ctor(), nil
}

// Kinds lists the registered module kinds in order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
