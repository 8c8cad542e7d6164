package workflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jszwec/csvutil"
)

var ErrSummary = errors.New("cannot read workflow summary")

// SummaryEntry is a row of the workflow engine's summary: one per output file.
type SummaryEntry struct {
	OutputFile string `csv:"output_file" json:"output_file"`
	Date       string `csv:"date" json:"date"`
	Rule       string `csv:"rule" json:"rule"`
	Version    string `csv:"version" json:"version"`
	LogFiles   string `csv:"log-file(s)" json:"log_files"`
	Status     string `csv:"status" json:"status"`
	Plan       string `csv:"plan" json:"plan"`
}

// SummaryArgs builds arguments to ask the workflow engine for a summary of
// outputs up to the task, instead of running it.
//
// The request is validated first. Mode and resource options are not used.
func (r Request) SummaryArgs() ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	args := []string{
		"--snakefile", r.Snakefile,
		"--configfile", r.ConfigFile,
		"--until", r.Task,
	}
	args = append(args, r.Extra...)
	return append(args, "--summary"), nil
}

// Summarize runs the workflow engine to get the summary of outputs up to the task.
//
// # Args
//
// - ctx
//
// - logger: destination of the command line
//
// - runner: runs the command and captures its stdout
//
// - engine: executable of the workflow engine
//
// - req: the request. Its Task is where the summary stops.
//
// # Returns
//
// - []SummaryEntry: rows of the summary, in the engine's order.
//
// - error: *ExitError when the engine fails, or wrapping ErrSummary when its output is not a summary.
func Summarize(ctx context.Context, logger *log.Logger, runner Runner, engine string, req Request) ([]SummaryEntry, error) {
	args, err := req.SummaryArgs()
	if err != nil {
		return nil, err
	}

	logger.Printf("summarizing:\n%s", CommandLine(engine, args))
	out, err := runner.Output(ctx, engine, args)
	if err != nil {
		return nil, err
	}
	return ParseSummary(out)
}

// ParseSummary reads the tab separated summary printed by the workflow engine.
//
// Columns not known to SummaryEntry are ignored, and missing ones are left empty.
func ParseSummary(summary []byte) ([]SummaryEntry, error) {
	rd := csv.NewReader(bytes.NewReader(summary))
	rd.Comma = '\t'
	rd.FieldsPerRecord = -1

	entries := []SummaryEntry{}
	dec, err := csvutil.NewDecoder(rd)
	if errors.Is(err, io.EOF) {
		return entries, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSummary, err)
	}
	dec.AlignRecord = true

	// header only
	if err := dec.Decode(&entries); errors.Is(err, io.EOF) {
		return []SummaryEntry{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSummary, err)
	}
	return entries, nil
}
