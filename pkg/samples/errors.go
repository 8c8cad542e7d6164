package samples

import (
	"errors"
	"fmt"
	"strings"
)

var ErrParse = errors.New("cannot parse sample manifest")

var ErrNoSampleID = errors.New("sample_id column is missing")
var ErrSchemeConflict = errors.New("sra and fastq columns are specified at the same time")
var ErrInvalidSampleID = errors.New("invalid sample_id")
var ErrUnpairedColumns = errors.New("short_forward_reads and short_reverse_reads should be specified together")
var ErrInterleavedConflict = errors.New("paired reads and interleaved reads are specified at the same time")
var ErrPairMismatch = errors.New("only one side of paired-end reads is specified")
var ErrNotGzip = errors.New("not gzip format")

// ValidationError is an error holding all violations found in a manifest.
//
// errors.Is works for each kind of violation.
type ValidationError struct {
	// Source names the manifest. It can be empty.
	Source string

	Violations []error
}

func (ve *ValidationError) Error() string {
	b := new(strings.Builder)
	if ve.Source == "" {
		b.WriteString("sample manifest is invalid:")
	} else {
		fmt.Fprintf(b, "sample manifest %s is invalid:", ve.Source)
	}
	for _, v := range ve.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.Error())
	}
	return b.String()
}

func (ve *ValidationError) Unwrap() []error {
	return ve.Violations
}
