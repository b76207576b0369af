package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// DecodeArray splits a JSON array into its raw elements so that one bad
// element can be dropped without losing the rest.
func DecodeArray(raw []byte) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("expected JSON array: %w", err)
	}
	return elems, nil
}

// DecodeObject decodes a JSON object keeping numbers as json.Number.
func DecodeObject(raw []byte) (map[string]any, bool) {
	var obj map[string]any
	if err := decodeNumbers(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// DecodeRow decodes a JSON array row keeping numbers as json.Number.
func DecodeRow(raw []byte) ([]any, bool) {
	var row []any
	if err := decodeNumbers(raw, &row); err != nil || row == nil {
		return nil, false
	}
	return row, true
}

func decodeNumbers(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

// ToString returns strings unchanged and numbers in their JSON spelling.
func ToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// ToDecimalString accepts a string or number that parses as a finite decimal.
func ToDecimalString(v any) (string, bool) {
	s, ok := ToString(v)
	if !ok {
		return "", false
	}
	if _, ok := ParseFloat(s); !ok {
		return "", false
	}
	return s, true
}
