package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/umahmood/haversine"
)

// Derived column names added by CleanCrimeTable.
const (
	ColumnLat           = "lat"
	ColumnLng           = "lng"
	ColumnStreetName    = "street_name"
	ColumnYear          = "year"
	ColumnMonthNum      = "month_num"
	ColumnCategoryCode  = "category_code"
	ColumnDistanceMiles = "distance_miles"
	ColumnInRadius      = "in_radius"
)

// Source columns read by CleanCrimeTable.
const (
	ColumnLocation = "location"
	ColumnMonth    = "month"
	ColumnCategory = "category"
)

// requiredColumns must all be present for a row to survive cleaning.
var requiredColumns = []string{ColumnLat, ColumnLng, ColumnCategory, ColumnMonth}

// monthDateLayouts are tried in order when parsing the month column.
var monthDateLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/01",
}

// Area is the region crime rows are measured against.
type Area struct {
	Center      Point
	RadiusMiles float64
}

// CleanCrimeTable normalizes a concatenated crime table and returns a new
// table in which every row has lat, lng, category and month. The input is not
// modified.
//
// Derived columns are added only when their source column exists: lat, lng,
// street_name, distance_miles and in_radius from location; year and month_num
// from month; category_code from category.
func CleanCrimeTable(in Table, area Area) Table {
	t := Table{Columns: append([]string(nil), in.Columns...)}
	t.Rows = normalizeRows(in.Rows)

	hasLocation := t.HasColumn(ColumnLocation)
	hasMonth := t.HasColumn(ColumnMonth)
	hasCategory := t.HasColumn(ColumnCategory)

	if hasLocation {
		for _, c := range []string{ColumnLat, ColumnLng, ColumnStreetName, ColumnDistanceMiles, ColumnInRadius} {
			t.addColumn(c)
		}
	}
	if hasMonth {
		t.addColumn(ColumnYear)
		t.addColumn(ColumnMonthNum)
	}
	if hasCategory {
		t.addColumn(ColumnCategoryCode)
	}

	codes := make(map[string]int)
	for _, row := range t.Rows {
		if hasLocation {
			deriveLocation(row, area)
		}
		if hasMonth {
			deriveMonth(row)
		}
		if hasCategory {
			deriveCategoryCode(row, codes)
		}
	}

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if hasRequired(row) {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
	return t
}

// normalizeRows copies rows, treating blank cells as missing and dropping rows
// left with no values.
func normalizeRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := make(Row, len(r))
		for k, v := range r {
			if strings.TrimSpace(v) == "" {
				continue
			}
			row[k] = v
		}
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

func deriveLocation(row Row, area Area) {
	delete(row, ColumnLat)
	delete(row, ColumnLng)
	delete(row, ColumnStreetName)
	delete(row, ColumnDistanceMiles)
	delete(row, ColumnInRadius)

	text, ok := row[ColumnLocation]
	if !ok {
		return
	}
	loc, err := ParseLocation(text)
	if err != nil {
		return
	}

	if loc.Latitude != nil {
		row[ColumnLat] = strconv.FormatFloat(*loc.Latitude, 'f', -1, 64)
	}
	if loc.Longitude != nil {
		row[ColumnLng] = strconv.FormatFloat(*loc.Longitude, 'f', -1, 64)
	}
	if loc.StreetName != nil {
		row[ColumnStreetName] = *loc.StreetName
	}
	if loc.Latitude != nil && loc.Longitude != nil {
		miles, _ := haversine.Distance(
			haversine.Coord{Lat: area.Center.Lat, Lon: area.Center.Lon},
			haversine.Coord{Lat: *loc.Latitude, Lon: *loc.Longitude},
		)
		row[ColumnDistanceMiles] = strconv.FormatFloat(miles, 'f', 4, 64)
		row[ColumnInRadius] = strconv.FormatBool(miles <= area.RadiusMiles)
	}
}

func deriveMonth(row Row) {
	delete(row, ColumnYear)
	delete(row, ColumnMonthNum)

	text, ok := row[ColumnMonth]
	if !ok {
		return
	}
	t, ok := parseMonthDate(strings.TrimSpace(text))
	if !ok {
		return
	}
	row[ColumnYear] = strconv.Itoa(t.Year())
	row[ColumnMonthNum] = strconv.Itoa(int(t.Month()))
}

func parseMonthDate(s string) (time.Time, bool) {
	for _, layout := range monthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func deriveCategoryCode(row Row, codes map[string]int) {
	delete(row, ColumnCategoryCode)

	category, ok := row[ColumnCategory]
	if !ok {
		return
	}
	code, seen := codes[category]
	if !seen {
		code = len(codes)
		codes[category] = code
	}
	row[ColumnCategoryCode] = strconv.Itoa(code)
}

func hasRequired(row Row) bool {
	for _, c := range requiredColumns {
		if _, ok := row[c]; !ok {
			return false
		}
	}
	return true
}
