package samples

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"
)

// ValidateFile reads and validates the manifest file.
//
// See Validate for details.
func ValidateFile(path string) (*Table, Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	t, s, err := Validate(f)
	if ve := new(ValidationError); errors.As(err, &ve) {
		ve.Source = path
	}
	return t, s, err
}

// Validate reads a manifest and checks it.
//
// # Returns
//
// - *Table: the manifest, when it is valid.
//
// - Scheme: SchemeSRA when it has accession columns, otherwise SchemeFQ.
//
// - error: *ValidationError listing all violations, when the manifest is invalid.
// When it has columns of both schemes, no further checks are done.
// Other errors are caused by reading or parsing the manifest (ErrParse).
func Validate(r io.Reader) (*Table, Scheme, error) {
	t, err := read(r)
	if err != nil {
		return nil, "", err
	}

	isSRA := slices.ContainsFunc(sraColumns, t.Has)
	isFQ := slices.ContainsFunc(fqColumns, t.Has)
	if isSRA && isFQ {
		return nil, "", &ValidationError{Violations: []error{
			fmt.Errorf(
				"%w: please provide fastq only or sra only", ErrSchemeConflict,
			),
		}}
	}

	violations := []error{}

	invalid := map[string]struct{}{}
	for _, row := range t.rows {
		id := row.id
		if _, ok := invalid[id]; ok {
			continue
		}
		switch {
		case id == "":
			invalid[id] = struct{}{}
			violations = append(violations, fmt.Errorf("%w: line %d: sample_id is empty", ErrInvalidSampleID, row.line))
		case strings.Contains(id, "."):
			invalid[id] = struct{}{}
			violations = append(violations, fmt.Errorf("%w: %s contains '.', please remove '.'", ErrInvalidSampleID, id))
		}
	}

	if isFQ {
		violations = append(violations, t.checkFiles()...)
	}

	if len(violations) != 0 {
		return nil, "", &ValidationError{Violations: violations}
	}

	scheme := SchemeFQ
	if isSRA {
		scheme = SchemeSRA
	}
	t.Scheme = scheme
	return t, scheme, nil
}

func (t *Table) checkFiles() []error {
	violations := []error{}

	hasF, hasR, hasI := t.Has(ColumnForward), t.Has(ColumnReverse), t.Has(ColumnInterleaved)
	paired := hasF && hasR
	switch {
	case paired && hasI:
		violations = append(violations, fmt.Errorf(
			"%w: please only specify %s and %s, or %s",
			ErrInterleavedConflict, ColumnForward, ColumnReverse, ColumnInterleaved,
		))
	case hasF != hasR:
		violations = append(violations, fmt.Errorf(
			"%w: please specify %s and %s at the same time",
			ErrUnpairedColumns, ColumnForward, ColumnReverse,
		))
	}

	for _, row := range t.rows {
		if paired {
			fwd, rev := t.cell(row, ColumnForward), t.cell(row, ColumnReverse)
			switch {
			case fwd == "" && rev == "":
			case fwd == "" || rev == "":
				violations = append(violations, fmt.Errorf(
					"%w: sample %s (line %d) has only forward or reverse reads",
					ErrPairMismatch, row.id, row.line,
				))
			default:
				for _, v := range []string{fwd, rev} {
					if !isGzip(v) {
						violations = append(violations, notGzip(row, v))
					}
				}
			}
		}

		for _, col := range []string{ColumnSingle, ColumnLong, ColumnInterleaved} {
			if !t.Has(col) {
				continue
			}
			if v := t.cell(row, col); v != "" && !isGzip(v) {
				violations = append(violations, notGzip(row, v))
			}
		}
	}

	return violations
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

func notGzip(r row, path string) error {
	return fmt.Errorf("%w: sample %s (line %d): %s", ErrNotGzip, r.id, r.line, path)
}

// manifestRow is the part of a manifest row decoded by name.
type manifestRow struct {
	SampleID string `csv:"sample_id"`
}

// rowReader reads tab separated records, remembering the width of the last one.
type rowReader struct {
	*csv.Reader
	width int
}

func (rr *rowReader) Read() ([]string, error) {
	record, err := rr.Reader.Read()
	rr.width = len(record)
	return record, err
}

func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	if isNA(v) {
		return ""
	}
	return v
}

func read(r io.Reader) (*Table, error) {
	rd := csv.NewReader(r)
	rd.Comma = '\t'
	rd.LazyQuotes = true
	rd.FieldsPerRecord = -1
	rr := &rowReader{Reader: rd}

	dec, err := csvutil.NewDecoder(rr)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: header row is missing", ErrNoSampleID)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := dec.NormalizeHeader(func(h string) string {
		return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}); err != nil {
		return nil, fmt.Errorf("%w: duplicated columns in %v", ErrParse, dec.Header())
	}
	dec.AlignRecord = true
	dec.Map = func(field, _ string, _ any) string { return normalizeCell(field) }

	columns := dec.Header()
	t := newTable(columns)
	if !t.Has(ColumnSampleID) {
		return nil, fmt.Errorf("%w: columns are %v", ErrNoSampleID, columns)
	}

	for {
		var mr manifestRow
		err := dec.Decode(&mr)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		line, _ := rd.FieldPos(0)

		if rr.width > len(columns) {
			return nil, fmt.Errorf(
				"%w: line %d: %d fields, but header has %d",
				ErrParse, line, rr.width, len(columns),
			)
		}

		record := dec.Record()
		values := make([]string, len(columns))
		for i, v := range record {
			values[i] = normalizeCell(v)
		}
		t.add(line, mr.SampleID, values)
	}

	return t, nil
}
