package identify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/identify"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/internal/commandline"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/logger"
	testctx "github.com/ohmeta/strainpi/internal/testutils/context"
	"github.com/ohmeta/strainpi/pkg/samples"
	"github.com/ohmeta/strainpi/pkg/utils/try"
	"github.com/ohmeta/strainpi/pkg/workflow"
	"github.com/youta-t/flarc"
)

type call struct {
	Name string
	Args []string
}

type fakeRunner struct {
	calls  []call
	output []byte
	err    error
}

func (fr *fakeRunner) Run(_ context.Context, name string, args []string) error {
	fr.calls = append(fr.calls, call{Name: name, Args: args})
	return fr.err
}

func (fr *fakeRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	err := fr.Run(ctx, name, args)
	return fr.output, err
}

// setup makes a project with config and manifest, and returns the workdir.
func setup(t *testing.T, manifestContent string) (workdir string, manifest string) {
	t.Helper()
	workdir = t.TempDir()
	manifest = filepath.Join(workdir, "samples.tsv")
	if manifestContent != "" {
		if err := os.WriteFile(manifest, []byte(manifestContent), 0644); err != nil {
			t.Fatal(err)
		}
	}
	conf := "params:\n  samples: " + manifest + "\n  begin: trimming\n"
	if err := os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	return workdir, manifest
}

const validManifest = "sample_id\tshort_forward_reads\tshort_reverse_reads\n" +
	"s1\t/data/s1_1.fq.gz\t/data/s1_2.fq.gz\n"

func run(t *testing.T, runner workflow.Runner, flags identify.Flag, task ...string) error {
	t.Helper()
	ctx := testctx.WithTest(context.Background(), t)
	args := map[string][]string{}
	if 0 < len(task) {
		args[identify.ARG_TASK] = task
	}
	return identify.Task(runner)(
		ctx,
		logger.Null(),
		commandline.MockCommandline[identify.Flag]{
			Fullname_: "strainpi identify_wf",
			Stdout_:   io.Discard,
			Stderr_:   io.Discard,
			Flags_:    flags,
			Args_:     args,
		},
		[]any{},
	)
}

func TestIdentify(t *testing.T) {
	type When struct {
		flag func(workdir string) identify.Flag
		task []string
	}
	type Then struct {
		args func(workdir string) []string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			workdir, _ := setup(t, validManifest)
			runner := &fakeRunner{}
			flags := when.flag(workdir)

			if err := run(t, runner, flags, when.task...); err != nil {
				t.Fatal(err)
			}

			expected := []call{{Name: flags.Snakemake, Args: then.args(workdir)}}
			if !cmp.Equal(runner.calls, expected) {
				t.Errorf("unexpected calls:\n%s", cmp.Diff(expected, runner.calls))
			}
		}
	}

	base := func(workdir string) identify.Flag {
		f := identify.DefaultFlag()
		f.Workdir = workdir
		f.Snakefile = "/opt/strainpi/identify_wf.smk"
		return f
	}
	head := func(workdir string, task string) []string {
		return []string{
			"--snakefile", "/opt/strainpi/identify_wf.smk",
			"--configfile", filepath.Join(workdir, "config.yaml"),
			"--cores", "240",
			"--until", task,
		}
	}

	t.Run("it dry-runs by default", theory(
		When{flag: base},
		Then{
			args: func(workdir string) []string {
				return append(
					head(workdir, "all"),
					"--rerun-incomplete", "--keep-going", "--printshellcmds", "--dry-run",
				)
			},
		},
	))

	t.Run("it runs until the task", theory(
		When{
			flag: func(workdir string) identify.Flag {
				f := base(workdir)
				f.RunLocal = true
				f.Jobs = 4
				return f
			},
			task: []string{"trimming_all"},
		},
		Then{
			args: func(workdir string) []string {
				return append(
					head(workdir, "trimming_all"),
					"--rerun-incomplete", "--keep-going", "--printshellcmds",
					"--local-cores", "8", "--jobs", "4",
				)
			},
		},
	))

	t.Run("it uses the profile next to the config on remote", theory(
		When{
			flag: func(workdir string) identify.Flag {
				f := base(workdir)
				f.RunRemote = true
				f.UseConda = true
				f.CondaPrefix = "/opt/conda/envs"
				try.To(struct{}{}, f.ClusterEngine.Set("sge")).OrFatal(t)
				return f
			},
		},
		Then{
			args: func(workdir string) []string {
				return append(
					head(workdir, "all"),
					"--rerun-incomplete", "--keep-going", "--printshellcmds",
					"--use-conda", "--conda-prefix", "/opt/conda/envs",
					"--profile", filepath.Join(workdir, "profiles", "sge"),
					"--local-cores", "8", "--jobs", "30",
				)
			},
		},
	))

	t.Run("it passes snakemake args and memory limit", theory(
		When{
			flag: func(workdir string) identify.Flag {
				f := base(workdir)
				f.List = true
				f.SnakemakeArg = []string{"--quiet"}
				try.To(struct{}{}, f.MaxMemory.Set("2G")).OrFatal(t)
				return f
			},
		},
		Then{
			args: func(workdir string) []string {
				return append(
					head(workdir, "all"),
					"--quiet",
					"--rerun-incomplete", "--keep-going", "--printshellcmds",
					"--list",
					"--resources", "mem_mb=2000",
				)
			},
		},
	))

	t.Run("it only touches outputs with --touch", theory(
		When{
			flag: func(workdir string) identify.Flag {
				f := base(workdir)
				f.Touch = true
				f.RunLocal = true
				return f
			},
		},
		Then{
			args: func(workdir string) []string {
				return append(head(workdir, "all"), "--touch")
			},
		},
	))
}

func TestIdentify_Errors(t *testing.T) {
	t.Run("unknown task is usage error", func(t *testing.T) {
		workdir, _ := setup(t, validManifest)
		runner := &fakeRunner{}
		f := identify.DefaultFlag()
		f.Workdir = workdir

		err := run(t, runner, f, "no_such_rule_all")
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("runner is called: %v", runner.calls)
		}
	})

	t.Run("missing manifest stops before running", func(t *testing.T) {
		workdir, _ := setup(t, "")
		runner := &fakeRunner{}
		f := identify.DefaultFlag()
		f.Workdir = workdir

		err := run(t, runner, f)
		if !errors.Is(err, workflow.ErrManifestNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("runner is called: %v", runner.calls)
		}
	})

	t.Run("it waits for the manifest to appear", func(t *testing.T) {
		workdir, manifest := setup(t, "")
		runner := &fakeRunner{}
		f := identify.DefaultFlag()
		f.Workdir = workdir
		f.Wait = 10

		go func() {
			time.Sleep(100 * time.Millisecond)
			os.WriteFile(manifest, []byte(validManifest), 0644)
		}()

		if err := run(t, runner, f); err != nil {
			t.Fatal(err)
		}
		if len(runner.calls) != 1 {
			t.Errorf("runner is not called once: %v", runner.calls)
		}
	})

	t.Run("invalid manifest is reported with --check-samples", func(t *testing.T) {
		workdir, _ := setup(
			t,
			"sample_id\tshort_forward_reads\tsra_pe\n"+
				"s1\t/data/s1_1.fq.gz\tSRR000001\n",
		)
		runner := &fakeRunner{}
		f := identify.DefaultFlag()
		f.Workdir = workdir
		f.CheckSamples = true

		err := run(t, runner, f)
		if !errors.Is(err, samples.ErrSchemeConflict) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(runner.calls) != 0 {
			t.Errorf("runner is called: %v", runner.calls)
		}
	})

	t.Run("missing config is error", func(t *testing.T) {
		runner := &fakeRunner{}
		f := identify.DefaultFlag()
		f.Workdir = t.TempDir()

		if err := run(t, runner, f); err == nil {
			t.Error("no error")
		}
		if len(runner.calls) != 0 {
			t.Errorf("runner is called: %v", runner.calls)
		}
	})

	t.Run("failure of snakemake is propagated", func(t *testing.T) {
		workdir, _ := setup(t, validManifest)
		runner := &fakeRunner{err: &workflow.ExitError{Command: "snakemake", Code: 2}}
		f := identify.DefaultFlag()
		f.Workdir = workdir

		err := run(t, runner, f)
		var exitErr *workflow.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 2 {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestIdentify_Summary(t *testing.T) {
	workdir, _ := setup(t, validManifest)
	runner := &fakeRunner{output: []byte(
		"output_file\tdate\trule\tversion\tlog-file(s)\tstatus\tplan\n" +
			"results/s1.trimmed.1.fq.gz\t-\ttrimming_fastp\t-\t\tmissing\tupdate pending\n",
	)}
	f := identify.DefaultFlag()
	f.Workdir = workdir
	f.Snakefile = "/opt/strainpi/identify_wf.smk"
	f.Summary = true
	f.RunLocal = true

	stdout := new(bytes.Buffer)
	err := identify.Task(runner)(
		testctx.WithTest(context.Background(), t),
		logger.Null(),
		commandline.MockCommandline[identify.Flag]{
			Fullname_: "strainpi identify_wf",
			Stdout_:   stdout,
			Flags_:    f,
			Args_:     map[string][]string{identify.ARG_TASK: {"trimming_all"}},
		},
		[]any{},
	)
	if err != nil {
		t.Fatal(err)
	}

	expectedCalls := []call{{
		Name: "snakemake",
		Args: []string{
			"--snakefile", "/opt/strainpi/identify_wf.smk",
			"--configfile", filepath.Join(workdir, "config.yaml"),
			"--until", "trimming_all",
			"--summary",
		},
	}}
	if !cmp.Equal(runner.calls, expectedCalls) {
		t.Errorf("unexpected calls:\n%s", cmp.Diff(expectedCalls, runner.calls))
	}

	actual := []workflow.SummaryEntry{}
	if err := json.Unmarshal(stdout.Bytes(), &actual); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	expected := []workflow.SummaryEntry{{
		OutputFile: "results/s1.trimmed.1.fq.gz",
		Date:       "-",
		Rule:       "trimming_fastp",
		Version:    "-",
		Status:     "missing",
		Plan:       "update pending",
	}}
	if !cmp.Equal(actual, expected) {
		t.Errorf("unexpected output:\n%s", cmp.Diff(expected, actual))
	}
}
