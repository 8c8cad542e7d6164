package project

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ohmeta/strainpi/pkg/config"
)

var ErrInvalidSelection = errors.New("invalid tool selection")

const (
	BeginTrimming = "trimming"
	BeginRmhost   = "rmhost"
	BeginIdentify = "identify"
)

// Begins are the pipeline starting points.
var Begins = []string{BeginTrimming, BeginRmhost, BeginIdentify}

// Trimmers are members of the read trimming tool family.
var Trimmers = []string{"sickle", "fastp", "trimmomatic"}

// Rmhosters are members of the host read removal tool family.
var Rmhosters = []string{"bwa", "bowtie2", "minimap2", "kraken2", "kneaddata"}

// Identifiers are members of the strain identification tool family.
var Identifiers = []string{"strainphlan", "instrain"}

// Selection is which tools the pipeline uses, and where it starts.
type Selection struct {
	Begin       string
	Trimmer     string
	Rmhoster    string
	Identifiers []string

	// GPU tells whether GPU is available.
	GPU bool
}

// DefaultSelection returns the selection used when nothing is specified.
func DefaultSelection() Selection {
	return Selection{
		Begin:       BeginTrimming,
		Trimmer:     "fastp",
		Rmhoster:    "bowtie2",
		Identifiers: slices.Clone(Identifiers),
		GPU:         true,
	}
}

// Validate checks each field is one of the allowed values.
//
// # Returns
//
// - error: wrapping ErrInvalidSelection, which lists all problems.
func (s Selection) Validate() error {
	problems := []string{}
	check := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			problems = append(problems, fmt.Sprintf(
				"%s %q is not one of %s", field, value, strings.Join(allowed, ", "),
			))
		}
	}

	check("begin", s.Begin, Begins)
	check("trimmer", s.Trimmer, Trimmers)
	check("rmhoster", s.Rmhoster, Rmhosters)
	if len(s.Identifiers) == 0 {
		problems = append(problems, "identifier: at least one is required")
	}
	for _, i := range s.Identifiers {
		check("identifier", i, Identifiers)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSelection, strings.Join(problems, "; "))
}

// Apply makes a new document which enables the selected tools.
//
// The given document is not modified.
//
// Every member of each tool family gets its `do` flag, which is true only for the selected one.
// Then, stages before the starting point are turned off.
//
// # Returns
//
// - *config.Document: the updated document
//
// - error: ErrInvalidSelection if the selection is invalid,
// or config.ErrNotMapping if the document has unexpected structure.
func Apply(doc *config.Document, sel Selection) (*config.Document, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	ret := doc.Clone()
	set := func(value any, path ...string) error {
		return ret.Set(value, append([]string{"params"}, path...)...)
	}

	if err := set(sel.Begin, "begin"); err != nil {
		return nil, err
	}

	for _, t := range Trimmers {
		if err := set(t == sel.Trimmer, "trimming", t, "do"); err != nil {
			return nil, err
		}
	}
	for _, r := range Rmhosters {
		if err := set(r == sel.Rmhoster, "rmhost", r, "do"); err != nil {
			return nil, err
		}
	}
	for _, i := range Identifiers {
		if err := set(slices.Contains(sel.Identifiers, i), "identify", i, "do"); err != nil {
			return nil, err
		}
	}

	if !sel.GPU {
		if err := set(false, "binning", "vamb", "cuda"); err != nil {
			return nil, err
		}
	}

	switch sel.Begin {
	case BeginRmhost:
		if err := set(false, "trimming", sel.Trimmer, "do"); err != nil {
			return nil, err
		}
	case BeginIdentify:
		for _, change := range []struct {
			value any
			path  []string
		}{
			{value: true, path: []string{"raw", "save_reads"}},
			{value: false, path: []string{"raw", "fastqc", "do"}},
			{value: false, path: []string{"qcreport", "do"}},
			{value: false, path: []string{"trimming", sel.Trimmer, "do"}},
			{value: false, path: []string{"rmhost", sel.Rmhoster, "do"}},
		} {
			if err := set(change.value, change.path...); err != nil {
				return nil, err
			}
		}
	}

	return ret, nil
}
