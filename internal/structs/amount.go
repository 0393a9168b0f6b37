package structs

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Amount is a price figure decoded leniently: numbers, numeric strings and
// null are accepted, anything malformed becomes 0.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		*a = 0
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		v = 0
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float() float64 {
	return float64(a)
}

func AmountPtr(v float64) *Amount {
	a := Amount(v)
	return &a
}
