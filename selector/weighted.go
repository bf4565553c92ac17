package selector

// AuxOffset shifts the phase of the auxiliary sample so it is decorrelated
// from the primary one without a second noise field.
const AuxOffset = 300.0

// Probabilities are three normalized branch weights.
type Probabilities struct {
	X, Y, Z float64
}

// Normalize scales non-negative weights to sum to 1. Negative weights count
// as 0; an all-zero input stays all zero.
func Normalize(x, y, z float64) Probabilities {
	x, y, z = max(x, 0), max(y, 0), max(z, 0)
	total := x + y + z
	if total <= 0 {
		return Probabilities{}
	}
	return Probabilities{X: x / total, Y: y / total, Z: z / total}
}

func (p Probabilities) Total() float64 {
	return p.X + p.Y + p.Z
}

// Of returns the weight of c.
func (p Probabilities) Of(c Choice) float64 {
	switch c {
	case X:
		return p.X
	case Y:
		return p.Y
	case Z:
		return p.Z
	}
	return 0
}

func (p Probabilities) lastNonzero() Choice {
	switch {
	case p.Z > 0:
		return Z
	case p.Y > 0:
		return Y
	case p.X > 0:
		return X
	}
	return None
}

// Partition picks the branch whose cumulative interval contains s in [0, 1].
// Ties go X, then Y, then Z; any mass left over by rounding falls to the
// last nonzero branch.
func (p Probabilities) Partition(s float64) Choice {
	if p.Total() <= 0 {
		return None
	}
	if p.X > 0 && s < p.X {
		return X
	}
	if p.Y > 0 && s < p.X+p.Y {
		return Y
	}
	if p.Z > 0 && s < p.X+p.Y+p.Z {
		return Z
	}
	return p.lastNonzero()
}

func remaining(c Choice) (Choice, Choice) {
	switch c {
	case X:
		return Y, Z
	case Y:
		return X, Z
	}
	return X, Y
}

// Pick chooses the primary branch from primary and the auxiliary branch from
// aux among the two branches the primary did not take. When both remaining
// weights are zero the auxiliary branch is the primary one.
func Pick(p Probabilities, primary, aux float64) (main, second Choice) {
	main = p.Partition(primary)
	if main == None {
		return None, None
	}

	a, b := remaining(main)
	pa, pb := p.Of(a), p.Of(b)
	switch {
	case pa+pb <= 0:
		return main, main
	case pa <= 0:
		return main, b
	case pb <= 0:
		return main, a
	}
	if aux < pa/(pa+pb) {
		return main, a
	}
	return main, b
}

// Weighted is the three-way selector with its main and auxiliary trackers.
type Weighted struct {
	Main ChangeTracker
	Aux  ChangeTracker
}

func NewWeighted() Weighted {
	return Weighted{Main: NewChangeTracker(), Aux: NewChangeTracker()}
}

// Process evaluates one frame. Without a trigger the previous selection is
// re-affirmed. With one, noise is sampled at (lane, phase) for the primary
// pick and at (lane, phase+AuxOffset) for the auxiliary pick. Zero total
// weight selects None on both.
func (w *Weighted) Process(triggered bool, p Probabilities, f Sampler, lane, phase float64) {
	if !triggered {
		w.Main.Process(w.Main.Current)
		w.Aux.Process(w.Aux.Current)
		return
	}

	if p.Total() <= 0 {
		w.Main.Process(None)
		w.Aux.Process(None)
		return
	}

	primary := unit(f.Sample(lane, phase))
	aux := unit(f.Sample(lane, phase+AuxOffset))
	main, second := Pick(p, primary, aux)
	w.Main.Process(main)
	w.Aux.Process(second)
}

func unit(v float64) float64 {
	return (v + 1) * 0.5
}
