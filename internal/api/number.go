package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexNumber accepts a JSON number or a numeric string, the way devices and
// browser forms tend to send quantities.
type flexNumber struct {
	Value float64
	Set   bool // the field was present and not null
	Valid bool // the field parsed as a number
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.Set = true

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			n.Set = false
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n.Value, n.Valid = f, true
		}
	}
	return nil
}

// flexString accepts a JSON string or a JSON number. Numbers keep their
// literal text, so a device sending uid 123 is stored as "123".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(num.String())
	}
	return nil
}
