package clock

// Division is a named musical subdivision expressed in chain ticks.
type Division struct {
	Name  string
	Ticks uint32
}

// Divisions at 24 PPQN.
var Divisions = [...]Division{
	{Name: "1/2", Ticks: 48},
	{Name: "1/2T", Ticks: 32},
	{Name: "1/2.", Ticks: 72},
	{Name: "1/4", Ticks: 24},
	{Name: "1/4T", Ticks: 16},
	{Name: "1/4.", Ticks: 36},
	{Name: "1/8", Ticks: 12},
	{Name: "1/8T", Ticks: 8},
	{Name: "1/8.", Ticks: 18},
	{Name: "1/16", Ticks: 6},
	{Name: "1/16T", Ticks: 4},
	{Name: "1/16.", Ticks: 9},
}

// ClampDivision bounds an index into the table.
func ClampDivision(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(Divisions) {
		return len(Divisions) - 1
	}
	return i
}

// DivisionAt returns the table entry for i, clamped, so callers can never
// divide by zero.
func DivisionAt(i int) Division {
	return Divisions[ClampDivision(i)]
}
