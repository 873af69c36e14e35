package domain

// Row maps a column name to its value. A column absent from the map is
// missing for that row.
type Row map[string]string

// Table is a set of rows with an ordered column list.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Cells renders row i in column order, missing values as "".
func (t Table) Cells(i int) []string {
	row := t.Rows[i]
	cells := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		cells[j] = row[c]
	}
	return cells
}

func (t *Table) addColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Concat stacks tables in order, keeping every row. Columns are the union of
// all tables' columns in first-seen order; rows from tables lacking a column
// are missing that value.
func Concat(tables ...Table) Table {
	var out Table
	total := 0
	for _, t := range tables {
		total += len(t.Rows)
	}
	out.Rows = make([]Row, 0, total)

	for _, t := range tables {
		for _, c := range t.Columns {
			out.addColumn(c)
		}
		for _, r := range t.Rows {
			row := make(Row, len(r))
			for k, v := range r {
				row[k] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
