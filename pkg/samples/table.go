package samples

import "slices"

type row struct {
	line   int
	id     string
	values []string
}

// Table is a validated sample manifest.
//
// A sample can span over multiple rows (e.g. sequencing runs or lanes).
// Accessors concatenate values of the sample's rows, in file order.
type Table struct {
	Scheme Scheme

	columns []string
	index   map[string]int
	rows    []row
	ids     []string
	byID    map[string][]int
}

func newTable(columns []string) *Table {
	index := map[string]int{}
	for i, c := range columns {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return &Table{
		columns: columns,
		index:   index,
		byID:    map[string][]int{},
	}
}

func (t *Table) add(line int, id string, values []string) {
	if _, ok := t.byID[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.byID[id] = append(t.byID[id], len(t.rows))
	t.rows = append(t.rows, row{line: line, id: id, values: values})
}

func (t *Table) cell(r row, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return r.values[i]
}

// Has tells whether the manifest has the column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Columns returns the header of the manifest.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// SampleIDs returns unique sample ids, in order of first appearance.
func (t *Table) SampleIDs() []string {
	return slices.Clone(t.ids)
}

// Reads returns non-empty values of the column over rows of the sample.
func (t *Table) Reads(sampleID string, column string) []string {
	ret := []string{}
	if !t.Has(column) {
		return ret
	}
	for _, i := range t.byID[sampleID] {
		if v := t.cell(t.rows[i], column); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

// First returns the first non-empty value of the column over rows of the sample.
func (t *Table) First(sampleID string, column string) (string, bool) {
	if !t.Has(column) {
		return "", false
	}
	for _, i := range t.byID[sampleID] {
		if v := t.cell(t.rows[i], column); v != "" {
			return v, true
		}
	}
	return "", false
}

// RawInputs returns the sample's inputs over the scheme's columns, in canonical order.
func (t *Table) RawInputs(sampleID string) []string {
	ret := []string{}
	for _, col := range t.Scheme.Columns() {
		ret = append(ret, t.Reads(sampleID, col)...)
	}
	return ret
}

// RawInputMap returns the sample's inputs keyed by column.
//
// Columns with no values are omitted.
func (t *Table) RawInputMap(sampleID string) map[string][]string {
	ret := map[string][]string{}
	for _, col := range t.Scheme.Columns() {
		if reads := t.Reads(sampleID, col); len(reads) != 0 {
			ret[col] = reads
		}
	}
	return ret
}
