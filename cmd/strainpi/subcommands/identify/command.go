package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/common"
	"github.com/ohmeta/strainpi/pkg/config"
	"github.com/ohmeta/strainpi/pkg/samples"
	kargs "github.com/ohmeta/strainpi/pkg/utils/args"
	spath "github.com/ohmeta/strainpi/pkg/utils/path"
	"github.com/ohmeta/strainpi/pkg/workflow"
	"github.com/youta-t/flarc"
	"k8s.io/apimachinery/pkg/api/resource"
)

const WORKFLOW = "identify_wf"

type Flag struct {
	Workdir      string `flag:"workdir" alias:"d" metavar:"DIR" help:"project workdir."`
	CheckSamples bool   `flag:"check-samples" help:"validate the sample manifest before running."`
	Config       string `flag:"config" metavar:"YAML" help:"config file. Relative path is resolved against --workdir."`

	Cores      int `flag:"cores" metavar:"N" help:"all job cores, available on '--run-remote'."`
	LocalCores int `flag:"local-cores" metavar:"N" help:"cores per job on local."`
	Jobs       int `flag:"jobs" metavar:"N" help:"jobs submitted at the same time."`

	List          bool          `flag:"list" help:"list pipeline rules."`
	Debug         bool          `flag:"debug" help:"debug pipeline."`
	DryRun        bool          `flag:"dry-run" help:"dry run pipeline."`
	RunLocal      bool          `flag:"run-local" help:"run pipeline on local computer."`
	RunRemote     bool          `flag:"run-remote" help:"run pipeline on remote cluster."`
	ClusterEngine *kargs.Choice `flag:"cluster-engine" metavar:"slurm|sge|lsf|pbs-torque" help:"cluster workflow manager engine, used with --run-remote."`

	Wait int `flag:"wait" metavar:"SECONDS" help:"wait for the sample manifest to appear, up to this many seconds."`

	UseConda            bool   `flag:"use-conda" help:"use conda environment."`
	CondaPrefix         string `flag:"conda-prefix" metavar:"DIR" help:"conda environment prefix."`
	CondaCreateEnvsOnly bool   `flag:"conda-create-envs-only" help:"conda create environments only."`

	Summary      bool     `flag:"summary" help:"display status of outputs until TASK as JSON, instead of running jobs."`
	Touch        bool     `flag:"touch" help:"mark outputs up to date, instead of running jobs."`
	SnakemakeArg []string `flag:"snakemake-arg" metavar:"ARG" help:"argument passed to snakemake as is. Repeatable."`
	Snakefile    string   `flag:"snakefile" metavar:"SMK" help:"snakefile of the workflow."`
	Snakemake    string   `flag:"snakemake" metavar:"EXECUTABLE" help:"snakemake executable."`

	MaxMemory *kargs.Adapter[*resource.Quantity] `flag:"max-memory" metavar:"QUANTITY" help:"limit of memory used by all jobs, like 64Gi or 500M."`
}

const ARG_TASK = "TASK"

type Option struct {
	runner workflow.Runner
}

// WithRunner replaces how the workflow engine is run.
func WithRunner(runner workflow.Runner) func(*Option) *Option {
	return func(o *Option) *Option {
		o.runner = runner
		return o
	}
}

func parseQuantity(s string) (*resource.Quantity, error) {
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DefaultFlag returns the flag with default values.
func DefaultFlag() Flag {
	return Flag{
		Workdir:       "./",
		Config:        "./config.yaml",
		Cores:         240,
		LocalCores:    8,
		Jobs:          30,
		ClusterEngine: kargs.NewChoice(workflow.DefaultClusterEngine, workflow.ClusterEngines...),
		CondaPrefix:   "~/.conda/envs",
		Snakefile:     common.DefaultSnakefile(WORKFLOW),
		Snakemake:     "snakemake",
		MaxMemory:     kargs.Parser(parseQuantity),
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{runner: workflow.NewExecRunner()}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Strain identification workflow.",
		DefaultFlag(),
		flarc.Args{
			{
				Name: ARG_TASK, Required: false,
				Help: fmt.Sprintf(
					"pipeline end point. One of %s. Default: %s",
					strings.Join(workflow.Checkpoints, ", "), workflow.DefaultTask,
				),
			},
		},
		common.NewTask(Task(option.runner)),
		flarc.WithDescription(`
Strain identification workflow.

It runs snakemake with the config made by "strainpi init".
Without any of --list, --run-local, --run-remote or --debug, it only shows what would be done.

Example
-------

Show what would be done:

    {{ .Command }} -d ./project

Run on this computer, with conda environments:

    {{ .Command }} -d ./project --run-local --use-conda

Display status of outputs, until host reads are removed:

    {{ .Command }} -d ./project --summary rmhost_all

Run on slurm cluster, until reads are trimmed:

    {{ .Command }} -d ./project --run-remote --cluster-engine slurm trimming_all
`),
	)
}

func Task(runner workflow.Runner) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cl flarc.Commandline[Flag],
		_ []any,
	) error {
		flags := cl.Flags()

		task := workflow.DefaultTask
		if args := cl.Args()[ARG_TASK]; 0 < len(args) && args[0] != "" {
			task = args[0]
		}
		if !slices.Contains(workflow.Checkpoints, task) {
			return fmt.Errorf(
				"%w: unknown task %q. it should be one of %s",
				flarc.ErrUsage, task, strings.Join(workflow.Checkpoints, ", "),
			)
		}
		if flags.Workdir == "" {
			return fmt.Errorf("%w: please supply --workdir", flarc.ErrUsage)
		}

		configFile, err := spath.ResolveAgainst(flags.Workdir, flags.Config)
		if err != nil {
			return err
		}
		doc, err := config.Load(configFile)
		if err != nil {
			return err
		}

		manifest, err := workflow.CheckManifest(ctx, doc, time.Duration(flags.Wait)*time.Second)
		if err != nil {
			return err
		}
		if flags.CheckSamples {
			table, scheme, err := samples.ValidateFile(manifest)
			if err != nil {
				return err
			}
			logger.Printf("%d samples in %s (scheme: %s)", len(table.SampleIDs()), manifest, scheme)
		}

		mode := workflow.ModeOf(flags.List, flags.RunLocal, flags.RunRemote, flags.Debug)
		req := workflow.Request{
			Snakefile:           flags.Snakefile,
			ConfigFile:          configFile,
			Task:                task,
			Cores:               flags.Cores,
			LocalCores:          flags.LocalCores,
			Jobs:                flags.Jobs,
			Mode:                mode,
			DryRun:              flags.DryRun,
			ClusterEngine:       flags.ClusterEngine.Value(),
			ProfileRoot:         profileRoot(configFile),
			UseConda:            flags.UseConda,
			CondaPrefix:         flags.CondaPrefix,
			CondaCreateEnvsOnly: flags.CondaCreateEnvsOnly,
			Touch:               flags.Touch,
			Extra:               flags.SnakemakeArg,
		}
		if flags.MaxMemory != nil && flags.MaxMemory.IsSet() {
			req.MaxMemory = flags.MaxMemory.Value()
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
		}

		if flags.Summary {
			entries, err := workflow.Summarize(ctx, logger, runner, flags.Snakemake, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cl.Stdout())
			enc.SetIndent("", "    ")
			return enc.Encode(entries)
		}

		return workflow.Invoke(ctx, logger, runner, flags.Snakemake, req)
	}
}
