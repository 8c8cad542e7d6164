// Package samples reads and validates sample manifests.
//
// A sample manifest is a tab separated table with a header row.
// It has a "sample_id" column, and columns of one of two schemes:
// sequence archive accessions (SRA) or local gzipped FASTQ files (FQ).
package samples

import "slices"

// Scheme is the kind of inputs which a manifest describes.
type Scheme string

const (
	SchemeFQ  Scheme = "FQ"
	SchemeSRA Scheme = "SRA"
)

func (s Scheme) String() string {
	return string(s)
}

// Columns returns the columns of the scheme, in canonical order.
func (s Scheme) Columns() []string {
	switch s {
	case SchemeSRA:
		return slices.Clone(sraColumns)
	case SchemeFQ:
		return slices.Clone(fqColumns)
	}
	return nil
}

const (
	ColumnSampleID = "sample_id"

	ColumnSRAPairedEnd = "sra_pe"
	ColumnSRASingleEnd = "sra_se"
	ColumnSRALong      = "sra_long"

	ColumnForward     = "short_forward_reads"
	ColumnReverse     = "short_reverse_reads"
	ColumnInterleaved = "short_interleaved_reads"
	ColumnSingle      = "short_single_reads"
	ColumnLong        = "long_reads"
)

var sraColumns = []string{ColumnSRAPairedEnd, ColumnSRASingleEnd, ColumnSRALong}

var fqColumns = []string{ColumnForward, ColumnReverse, ColumnInterleaved, ColumnSingle, ColumnLong}

// cell values regarded as empty.
var naMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

func isNA(v string) bool {
	return slices.Contains(naMarkers, v)
}
