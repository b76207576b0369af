package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NotAvailable is how an unavailable value is rendered.
const NotAvailable = "N/A"

// Float is a numeric value that may be unavailable.
// The zero value is unavailable, which keeps "no data" distinct from 0.
type Float struct {
	Value float64
	Valid bool
}

// Unavailable is the explicit unavailable value.
var Unavailable = Float{}

// Some wraps v. NaN and infinities are treated as unavailable.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Float{Value: v, Valid: true}
}

// Get returns the value and whether it is available.
func (f Float) Get() (float64, bool) {
	return f.Value, f.Valid
}

// Format renders the value with the given precision, or N/A.
func (f Float) Format(precision int) string {
	if !f.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(f.Value, 'f', precision, 64)
}

func (f Float) String() string {
	return f.Format(2)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else
// decodes as unavailable rather than failing the surrounding document.
func (f *Float) UnmarshalJSON(data []byte) error {
	*f = Unavailable
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = Some(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = Some(v)
		}
	}
	return nil
}
