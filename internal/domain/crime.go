package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64
	Lon float64
}

// CrimeRecord is one crime object as returned by the crime API. Keys keep the
// order in which the API sent them so monthly files get a stable header.
type CrimeRecord struct {
	keys   []string
	values map[string]json.RawMessage
}

// UnmarshalJSON decodes a JSON object, preserving key order. A repeated key
// keeps its first position and its last value.
func (r *CrimeRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("crime record: expected object, got %v", tok)
	}

	r.keys = r.keys[:0]
	r.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("crime record: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("crime record %q: %w", key, err)
		}
		if _, seen := r.values[key]; !seen {
			r.keys = append(r.keys, key)
		}
		r.values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Keys returns the record's keys in API order.
func (r CrimeRecord) Keys() []string {
	return r.keys
}

// Cell renders the value for key as a flat text cell: strings verbatim,
// numbers and booleans as their JSON literal, objects and arrays as compact
// JSON, null and absent keys as "".
func (r CrimeRecord) Cell(key string) string {
	return renderCell(r.values[key])
}

// CrimeColumns returns the union of keys across records, ordered by the first
// record's keys followed by keys first seen in later records.
func CrimeColumns(records []CrimeRecord) []string {
	seen := make(map[string]bool)
	var columns []string
	for i := range records {
		for _, k := range records[i].keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

func renderCell(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return string(raw)
	}
}

// Location is the decoded nested "location" value of a crime record. Fields
// are nil when absent or unparseable.
type Location struct {
	Latitude   *float64
	Longitude  *float64
	StreetName *string
}

type rawLocation struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
	Street    *struct {
		Name *string `json:"name"`
	} `json:"street"`
}

// ParseLocation decodes the text of a location cell. Text that is not a JSON
// object yields an empty Location and an error.
func ParseLocation(text string) (Location, error) {
	var raw rawLocation
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Location{}, fmt.Errorf("parse location: %w", err)
	}

	var loc Location
	loc.Latitude = parseCoordinate(raw.Latitude)
	loc.Longitude = parseCoordinate(raw.Longitude)
	if raw.Street != nil {
		loc.StreetName = raw.Street.Name
	}
	return loc, nil
}

// parseCoordinate accepts a JSON number or a JSON string holding a finite
// number.
func parseCoordinate(raw json.RawMessage) *float64 {
	s := renderCell(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// DecodeCrimeRecords decodes a crime API response body. A JSON null body
// decodes to no records.
func DecodeCrimeRecords(body []byte) ([]CrimeRecord, error) {
	var records []CrimeRecord
	if err := json.Unmarshal(body, &records); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("crime response at offset %d: %w", syntaxErr.Offset, err)
		}
		return nil, fmt.Errorf("crime response: %w", err)
	}
	return records, nil
}
