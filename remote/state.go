package remote

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/ajanata/rtc-drivers/ds1339"
)

// State is the payload published on the state topic.
type State struct {
	Time   string `cbor:"time"`
	Date   string `cbor:"date"`
	Hour   int    `cbor:"hour"`
	Minute int    `cbor:"minute"`
	Second int    `cbor:"second"`
	Day    int    `cbor:"day"`
	Month  int    `cbor:"month"`
	Year   int    `cbor:"year"`
}

func newState(t ds1339.TimeRecord, d ds1339.DateRecord) State {
	return State{
		Time:   t.String(),
		Date:   d.String(),
		Hour:   t.Hour,
		Minute: t.Minute,
		Second: t.Second,
		Day:    d.Day,
		Month:  d.Month,
		Year:   d.Year,
	}
}

var (
	stateEncMode cbor.EncMode
	stateDecMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	stateEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create state CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	stateDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create state CBOR decoder mode: %v", err))
	}
}

// MarshalCBOR encodes s deterministically.
func (s State) MarshalCBOR() ([]byte, error) {
	type plain State
	return stateEncMode.Marshal(plain(s))
}

// DecodeState decodes a payload published on the state topic.
func DecodeState(data []byte) (State, error) {
	type plain State
	var p plain
	if err := stateDecMode.Unmarshal(data, &p); err != nil {
		return State{}, fmt.Errorf("remote: decode state: %w", err)
	}
	return State(p), nil
}
