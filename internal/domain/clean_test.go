package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLocationCentral = `{"latitude":"51.4545","street":{"id":1,"name":"On or near Broad Street"},"longitude":"-2.5879"}`
	testLocationFar     = `{"latitude":"52.4862","street":{"id":2,"name":"On or near New Street"},"longitude":"-1.8904"}`
)

var testArea = Area{Center: Point{Lat: 51.4545, Lon: -2.5879}, RadiusMiles: 10}

func crimeTable(rows ...Row) Table {
	return Table{
		Columns: []string{"category", "location", "id", "month"},
		Rows:    rows,
	}
}

func TestCleanCrimeTable_RequiredFields(t *testing.T) {
	in := crimeTable(
		Row{"category": "burglary", "location": testLocationCentral, "id": "1", "month": "2010-01"},
		Row{"category": "burglary", "location": `{"street":{"name":"On or near Nowhere"}}`, "id": "2", "month": "2010-01"},
		Row{"location": testLocationCentral, "id": "3", "month": "2010-01"},
		Row{"category": "theft", "location": testLocationCentral, "id": "4"},
		Row{"category": "theft", "id": "5", "month": "2010-01"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "1", out.Rows[0]["id"])
	assert.Equal(t, "51.4545", out.Rows[0][ColumnLat])
	assert.Equal(t, "-2.5879", out.Rows[0][ColumnLng])
	assert.Equal(t, "On or near Broad Street", out.Rows[0][ColumnStreetName])
	assert.Equal(t, "2010", out.Rows[0][ColumnYear])
	assert.Equal(t, "1", out.Rows[0][ColumnMonthNum])
	assert.Equal(t, "0.0000", out.Rows[0][ColumnDistanceMiles])
	assert.Equal(t, "true", out.Rows[0][ColumnInRadius])
}

func TestCleanCrimeTable_CategoryCodesFirstSeen(t *testing.T) {
	in := crimeTable(
		Row{"category": "burglary", "location": testLocationCentral, "id": "1", "month": "2010-01"},
		Row{"category": "theft", "location": testLocationCentral, "id": "2", "month": "2010-01"},
		Row{"category": "burglary", "location": testLocationCentral, "id": "3", "month": "2010-02"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 3)
	codes := []string{out.Rows[0][ColumnCategoryCode], out.Rows[1][ColumnCategoryCode], out.Rows[2][ColumnCategoryCode]}
	assert.Equal(t, []string{"0", "1", "0"}, codes)
}

func TestCleanCrimeTable_CodesAssignedBeforeFilter(t *testing.T) {
	in := crimeTable(
		Row{"category": "drugs", "id": "1", "month": "2010-01"},
		Row{"category": "theft", "location": testLocationCentral, "id": "2", "month": "2010-01"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "1", out.Rows[0][ColumnCategoryCode])
}

func TestCleanCrimeTable_BlankCellsAndEmptyRows(t *testing.T) {
	in := crimeTable(
		Row{"category": "   ", "location": testLocationCentral, "id": "1", "month": "2010-01"},
		Row{"category": "", "location": " ", "id": "\t", "month": ""},
		Row{"category": "theft", "location": testLocationCentral, "id": "3", "month": "2010-01"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "3", out.Rows[0]["id"])
	assert.Equal(t, "0", out.Rows[0][ColumnCategoryCode])
}

func TestCleanCrimeTable_UnparseableMonthKeepsRow(t *testing.T) {
	in := crimeTable(
		Row{"category": "theft", "location": testLocationCentral, "id": "1", "month": "January"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	_, hasYear := out.Rows[0][ColumnYear]
	_, hasMonthNum := out.Rows[0][ColumnMonthNum]
	assert.False(t, hasYear)
	assert.False(t, hasMonthNum)
	assert.Equal(t, "", out.Cells(0)[indexOf(out.Columns, ColumnYear)])
}

func TestCleanCrimeTable_OutsideRadius(t *testing.T) {
	in := crimeTable(
		Row{"category": "theft", "location": testLocationFar, "id": "1", "month": "2010-01"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "false", out.Rows[0][ColumnInRadius])
	assert.NotEqual(t, "0.0000", out.Rows[0][ColumnDistanceMiles])
}

func TestCleanCrimeTable_Columns(t *testing.T) {
	out := CleanCrimeTable(crimeTable(), testArea)

	expected := []string{
		"category", "location", "id", "month",
		ColumnLat, ColumnLng, ColumnStreetName, ColumnDistanceMiles, ColumnInRadius,
		ColumnYear, ColumnMonthNum, ColumnCategoryCode,
	}
	if diff := cmp.Diff(expected, out.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, out.Rows)
}

func TestCleanCrimeTable_WithoutLocationColumnDropsEverything(t *testing.T) {
	in := Table{
		Columns: []string{"category", "month"},
		Rows:    []Row{{"category": "theft", "month": "2010-01"}},
	}

	out := CleanCrimeTable(in, testArea)

	assert.False(t, out.HasColumn(ColumnLat))
	assert.Empty(t, out.Rows)
}

func TestCleanCrimeTable_DoesNotModifyInputAndIsDeterministic(t *testing.T) {
	in := crimeTable(
		Row{"category": "burglary", "location": testLocationCentral, "id": "1", "month": "2010-01"},
		Row{"category": " ", "location": testLocationCentral, "id": "2", "month": "2010-01"},
		Row{"category": "theft", "location": testLocationFar, "id": "3", "month": "2010-02"},
	)
	before := Table{Columns: append([]string(nil), in.Columns...)}
	for _, r := range in.Rows {
		before.Rows = append(before.Rows, copyRow(r))
	}

	first := CleanCrimeTable(in, testArea)
	second := CleanCrimeTable(in, testArea)

	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("input modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cleaning not deterministic (-first +second):\n%s", diff)
	}
}

func TestConcat(t *testing.T) {
	a := Table{Columns: []string{"id", "category"}, Rows: []Row{{"id": "1", "category": "theft"}}}
	b := Table{Columns: []string{"id", "context"}, Rows: []Row{{"id": "2", "context": "x"}, {"id": "1"}}}

	out := Concat(a, b)

	assert.Equal(t, []string{"id", "category", "context"}, out.Columns)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, []string{"1", "theft", ""}, out.Cells(0))
	assert.Equal(t, []string{"2", "", "x"}, out.Cells(1))
	assert.Equal(t, []string{"1", "", ""}, out.Cells(2))
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func TestCleanCrimeTable_NonFiniteCoordinatesDropped(t *testing.T) {
	in := crimeTable(
		Row{"category": "burglary", "location": `{"latitude":"NaN","longitude":"-2.5879"}`, "id": "1", "month": "2010-01"},
		Row{"category": "burglary", "location": `{"latitude":"Inf","longitude":"-2.5879"}`, "id": "2", "month": "2010-01"},
		Row{"category": "burglary", "location": `{"latitude":"51.4545","longitude":"-inf"}`, "id": "3", "month": "2010-01"},
		Row{"category": "burglary", "location": testLocationCentral, "id": "4", "month": "2010-01"},
	)

	out := CleanCrimeTable(in, testArea)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "4", out.Rows[0]["id"])
}
