package cover

import (
	"encoding/json"
	"fmt"
)

// Zoom selects the zoom levels a cover is computed for: a single level when
// Min == Max, otherwise the inclusive range [Min, Max]. The cover is always
// computed at Max and merged upward to Min.
type Zoom struct {
	Min, Max int
}

// At covers a single zoom level.
func At(z int) Zoom { return Zoom{Min: z, Max: z} }

// Range covers every zoom in [min, max].
func Range(min, max int) Zoom { return Zoom{Min: min, Max: max} }

func (z Zoom) validate() error {
	if z.Min > z.Max {
		return fmt.Errorf("invalid zoom range: min %d greater than max %d", z.Min, z.Max)
	}
	return nil
}

// UnmarshalJSON accepts either a bare integer or a [min, max] pair.
func (z *Zoom) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*z = At(single)
		return nil
	}
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil && len(pair) == 2 {
		*z = Range(pair[0], pair[1])
		return nil
	}
	return fmt.Errorf("malformed zoom %s: want an integer or a [min, max] pair", string(data))
}

// MarshalJSON emits the shape UnmarshalJSON accepts.
func (z Zoom) MarshalJSON() ([]byte, error) {
	if z.Min == z.Max {
		return json.Marshal(z.Max)
	}
	return json.Marshal([2]int{z.Min, z.Max})
}
