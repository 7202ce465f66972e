package biz

import (
	"encoding/json"
	"strconv"
)

const unlimitedLabel = "unlimited"

type valueState uint8

const (
	stateUnavailable valueState = iota
	stateBytes
	stateNoLimit
)

// Value is a memory quantity that may be unknown or, for limits, unbounded. The zero Value is
// Unavailable.
type Value struct {
	state valueState
	bytes uint64
}

var (
	// Unavailable is a value whose source could not be read.
	Unavailable = Value{}
	// NoLimit is a limit that is not set.
	NoLimit = Value{state: stateNoLimit}
)

// Bytes returns an available value of n bytes.
func Bytes(n uint64) Value {
	return Value{state: stateBytes, bytes: n}
}

// Available reports whether the value holds a number of bytes.
func (v Value) Available() bool {
	return v.state == stateBytes
}

// IsNoLimit reports whether the value is an unset limit.
func (v Value) IsNoLimit() bool {
	return v.state == stateNoLimit
}

// Uint64 returns the number of bytes and whether the value holds one.
func (v Value) Uint64() (uint64, bool) {
	return v.bytes, v.state == stateBytes
}

func (v Value) String() string {
	switch v.state {
	case stateBytes:
		return strconv.FormatUint(v.bytes, 10)
	case stateNoLimit:
		return unlimitedLabel
	}
	return "N/A"
}

// MarshalJSON writes a number, null or "unlimited".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.state {
	case stateBytes:
		return []byte(strconv.FormatUint(v.bytes, 10)), nil
	case stateNoLimit:
		return json.Marshal(unlimitedLabel)
	}
	return []byte("null"), nil
}

// MarshalYAML follows the JSON representation.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.state {
	case stateBytes:
		return v.bytes, nil
	case stateNoLimit:
		return unlimitedLabel, nil
	}
	return nil, nil
}
