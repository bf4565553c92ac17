// Package seed holds the six-position configuration the chain origin turns
// into a single integer seed.
package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Positions is the number of seed buttons.
const Positions = 6

// State is one button's value, cycling A..F.
type State int

const (
	A State = iota
	B
	C
	D
	E
	F
	numStates
)

// Wrap folds any integer into A..F, used when loading persisted values.
func Wrap(v int) State {
	v %= int(numStates)
	if v < 0 {
		v += int(numStates)
	}
	return State(v)
}

// Next returns the following state, wrapping F back to A.
func (s State) Next() State {
	return Wrap(int(s) + 1)
}

func (s State) String() string {
	return string(rune('A' + Wrap(int(s))))
}

// Color is the light color of a state.
type Color struct {
	R, G, B float64
}

var colors = [numStates]Color{
	{1, 0, 0}, // red
	{0, 1, 0}, // green
	{0, 0, 1}, // blue
	{1, 1, 0}, // yellow
	{0, 1, 1}, // cyan
	{1, 0, 1}, // magenta
}

func (s State) Color() Color {
	return colors[Wrap(int(s))]
}

// Configuration is the full set of button states.
type Configuration [Positions]State

// Seed folds the configuration: XOR over i of (state_i+1) << (3*i).
// It is a pure function of the states.
func (c Configuration) Seed() int {
	seed := 0
	for i, s := range c {
		seed ^= (int(Wrap(int(s))) + 1) << (3 * i)
	}
	return seed
}

// Advance cycles one position and reports whether it changed.
func (c *Configuration) Advance(pos int) bool {
	if pos < 0 || pos >= Positions {
		return false
	}
	c[pos] = c[pos].Next()
	return true
}

// Randomize draws every position from r.
func (c *Configuration) Randomize(r *rand.Rand) {
	for i := range c {
		c[i] = State(r.IntN(int(numStates)))
	}
}

// Ints returns the states as plain integers for persistence.
func (c Configuration) Ints() []int {
	out := make([]int, Positions)
	for i, s := range c {
		out[i] = int(s)
	}
	return out
}

// FromInts loads persisted states. Missing positions stay A and values out
// of range wrap.
func FromInts(vals []int) Configuration {
	var c Configuration
	for i := 0; i < Positions && i < len(vals); i++ {
		c[i] = Wrap(vals[i])
	}
	return c
}

// Parse reads a configuration written as six letters, e.g. "ABFCAA".
func Parse(s string) (Configuration, error) {
	var c Configuration
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != Positions {
		return c, fmt.Errorf("seed configuration %q: want %d letters", s, Positions)
	}
	for i, r := range s {
		if r < 'A' || r > 'F' {
			return c, fmt.Errorf("seed configuration %q: position %d: %q is not A-F", s, i+1, r)
		}
		c[i] = State(r - 'A')
	}
	return c, nil
}

func (c Configuration) String() string {
	var b strings.Builder
	for _, s := range c {
		b.WriteString(s.String())
	}
	return b.String()
}
