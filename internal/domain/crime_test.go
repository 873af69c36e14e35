package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCrimeResponse = `[
  {
    "category": "anti-social-behaviour",
    "location_type": "Force",
    "location": {"latitude": "51.455657", "street": {"id": 883407, "name": "On or near Park Street"}, "longitude": "-2.598075"},
    "context": "",
    "outcome_status": null,
    "persistent_id": "",
    "id": 20604023,
    "location_subtype": "",
    "month": "2013-01"
  },
  {
    "category": "burglary",
    "location_type": "Force",
    "location": {"latitude": "51.459", "street": {"id": 1, "name": "On or near Queen Square"}, "longitude": "-2.594"},
    "context": "",
    "outcome_status": {"category": "Under investigation", "date": "2013-01"},
    "persistent_id": "a1b2",
    "id": 20604024,
    "location_subtype": "",
    "month": "2013-01",
    "extra": true
  }
]`

func TestDecodeCrimeRecords(t *testing.T) {
	records, err := DecodeCrimeRecords([]byte(testCrimeResponse))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{
		"category", "location_type", "location", "context", "outcome_status",
		"persistent_id", "id", "location_subtype", "month",
	}, records[0].Keys())

	r := records[0]
	assert.Equal(t, "anti-social-behaviour", r.Cell("category"))
	assert.Equal(t, "20604023", r.Cell("id"))
	assert.Equal(t, "", r.Cell("outcome_status"))
	assert.Equal(t, "", r.Cell("missing"))
	assert.JSONEq(t,
		`{"latitude":"51.455657","street":{"id":883407,"name":"On or near Park Street"},"longitude":"-2.598075"}`,
		r.Cell("location"))

	assert.Equal(t, "true", records[1].Cell("extra"))
	assert.JSONEq(t, `{"category":"Under investigation","date":"2013-01"}`, records[1].Cell("outcome_status"))
}

func TestDecodeCrimeRecords_EmptyAndNull(t *testing.T) {
	records, err := DecodeCrimeRecords([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = DecodeCrimeRecords([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeCrimeRecords_Invalid(t *testing.T) {
	for _, body := range []string{`{"category":"burglary"}`, `[{"a":1}`, `<html>`, `[1, 2]`} {
		_, err := DecodeCrimeRecords([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestCrimeRecord_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var r CrimeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &r))
	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, "3", r.Cell("a"))
}

func TestCrimeColumns(t *testing.T) {
	records, err := DecodeCrimeRecords([]byte(testCrimeResponse))
	require.NoError(t, err)

	columns := CrimeColumns(records)
	assert.Equal(t, "category", columns[0])
	assert.Equal(t, "extra", columns[len(columns)-1])
	assert.Len(t, columns, 10)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lat    *float64
		lng    *float64
		street *string
	}{
		{
			name:   "string coordinates",
			text:   `{"latitude":"51.4545","street":{"id":1,"name":"On or near Broad Street"},"longitude":"-2.5879"}`,
			lat:    ptr(51.4545),
			lng:    ptr(-2.5879),
			street: ptr("On or near Broad Street"),
		},
		{
			name: "numeric coordinates",
			text: `{"latitude":51.1,"longitude":-2.2}`,
			lat:  ptr(51.1),
			lng:  ptr(-2.2),
		},
		{
			name:   "no coordinates",
			text:   `{"street":{"name":"On or near Nowhere"}}`,
			street: ptr("On or near Nowhere"),
		},
		{
			name: "unparseable latitude",
			text: `{"latitude":"north","longitude":"-2.5"}`,
			lng:  ptr(-2.5),
		},
		{
			name: "not a number",
			text: `{"latitude":"NaN","longitude":"-2.5"}`,
			lng:  ptr(-2.5),
		},
		{
			name: "infinite coordinates",
			text: `{"latitude":"Inf","longitude":"-Infinity"}`,
		},
		{
			name: "street without name",
			text: `{"latitude":"1","longitude":"2","street":{"id":7}}`,
			lat:  ptr(1.0),
			lng:  ptr(2.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseLocation(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.lat, loc.Latitude)
			assert.Equal(t, tt.lng, loc.Longitude)
			assert.Equal(t, tt.street, loc.StreetName)
		})
	}
}

func TestParseLocation_NotJSON(t *testing.T) {
	_, err := ParseLocation(`{'latitude': '51.45'}`)
	assert.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
