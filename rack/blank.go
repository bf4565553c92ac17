package rack

import (
	"encoding/json"
	"fmt"

	"go-omen/chain"
)

// Blank has no controls. It passes chain messages through so a chain can
// span a gap in the rack.
type Blank struct {
	ModuleBase
	follower
}

func NewBlank() *Blank {
	return &Blank{
		ModuleBase: newBase(KindBlank, nil, nil, nil, 0),
		follower:   newFollower(string(KindBlank), 1),
	}
}

func (b *Blank) Process(host chain.Host, args ProcessArgs) {
	b.beginFrame(host, b, nil)
}

// OnSeed only records the seed; a blank never samples noise.
func (b *Blank) OnSeed(seed int) {
	b.seed = seed
}

func (b *Blank) Summary() string {
	return fmt.Sprintf("seed=%d", b.seed)
}

func (b *Blank) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}

func (b *Blank) UnmarshalJSON(data []byte) error {
	var v map[string]json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("blank state: %w", err)
	}
	return nil
}
