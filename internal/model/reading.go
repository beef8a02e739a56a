package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind is the declared type of a datapoint value.
type Kind int

const (
	// Other covers anything that is not a number or a string e.g. bools, arrays or objects.
	Other Kind = iota
	Integer
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "other"
	}
}

// Value is a typed datapoint value.
type Value struct {
	Kind Kind
	i    int64
	f    float64
	s    string
	raw  json.RawMessage
}

// IntValue creates a new integer value.
func IntValue(i int64) Value {
	return Value{Kind: Integer, i: i}
}

// FloatValue creates a new floating point value.
func FloatValue(f float64) Value {
	return Value{Kind: Float, f: f}
}

// StringValue creates a new string value.
func StringValue(s string) Value {
	return Value{Kind: String, s: s}
}

// RawValue wraps any json payload that is not a number or a string.
func RawValue(raw json.RawMessage) Value {
	return Value{Kind: Other, raw: raw}
}

// Numeric returns the value as a float, if the value is an integer or a float.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case Integer:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Int returns the integer representation of the value.
func (v Value) Int() int64 {
	if v.Kind == Float {
		return int64(v.f)
	}
	return v.i
}

func (v Value) String() string {
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	default:
		return string(v.raw)
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Integer:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Float:
		// keep the float kind across the wire
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !bytes.ContainsAny([]byte(s), ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case String:
		return json.Marshal(v.s)
	default:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Numbers without a fraction or exponent are decoded as integers.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty value")
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("could not decode string value: %w", err)
		}
		*v = StringValue(s)
	case c == '-' || (c >= '0' && c <= '9'):
		if !bytes.ContainsAny(b, ".eE") {
			if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
				*v = IntValue(i)
				return nil
			}
		}
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("could not decode number '%s': %w", string(b), err)
		}
		*v = FloatValue(f)
	default:
		raw := make(json.RawMessage, len(b))
		copy(raw, b)
		*v = RawValue(raw)
	}
	return nil
}

// Datapoint is a named value within a reading.
type Datapoint struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Reading is a set of datapoints for an asset at a given time.
type Reading struct {
	ID         string      `json:"id,omitempty"`
	Asset      string      `json:"asset"`
	Time       time.Time   `json:"time"`
	Datapoints []Datapoint `json:"datapoints"`
}

// NewReading creates a new reading for the given asset.
func NewReading(asset string, t time.Time, dd ...Datapoint) *Reading {
	return &Reading{
		Asset:      asset,
		Time:       t,
		Datapoints: dd,
	}
}

// Add appends a datapoint to the reading.
func (r *Reading) Add(name string, v Value) *Reading {
	r.Datapoints = append(r.Datapoints, Datapoint{Name: name, Value: v})
	return r
}

// Get returns the value of the named datapoint.
func (r *Reading) Get(name string) (Value, bool) {
	for _, dp := range r.Datapoints {
		if dp.Name == name {
			return dp.Value, true
		}
	}
	return Value{}, false
}

func (r Reading) String() string {
	return fmt.Sprintf("asset = %s , time = %v , datapoints = %+v", r.Asset, r.Time, r.Datapoints)
}
