package workflow

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	spath "github.com/ohmeta/strainpi/pkg/utils/path"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Request is a request to run the workflow.
type Request struct {
	Snakefile  string
	ConfigFile string

	// Task is the target rule. It should be one of Checkpoints.
	Task string

	Cores      int
	LocalCores int
	Jobs       int

	Mode   Mode
	DryRun bool

	// ClusterEngine is used in ModeRemote, to choose a profile.
	ClusterEngine string

	// ProfileRoot is the directory containing a profile directory per cluster engine.
	ProfileRoot string

	UseConda            bool
	CondaPrefix         string
	CondaCreateEnvsOnly bool

	// Touch marks outputs up to date, instead of running jobs.
	Touch bool

	// MaxMemory limits total memory used by jobs. nil means no limit.
	MaxMemory *resource.Quantity

	// Extra arguments passed through to the workflow engine.
	Extra []string
}

// Validate checks the request.
//
// # Returns
//
// - error: wrapping ErrInvalidRequest
func (r Request) Validate() error {
	switch {
	case r.Snakefile == "":
		return fmt.Errorf("%w: snakefile is not specified", ErrInvalidRequest)
	case r.ConfigFile == "":
		return fmt.Errorf("%w: config file is not specified", ErrInvalidRequest)
	case !slices.Contains(Checkpoints, r.Task):
		return fmt.Errorf("%w: unknown task %q", ErrInvalidRequest, r.Task)
	case r.Cores <= 0:
		return fmt.Errorf("%w: cores should be positive: %d", ErrInvalidRequest, r.Cores)
	}

	if r.Mode == ModeLocal || r.Mode == ModeRemote {
		if r.LocalCores <= 0 {
			return fmt.Errorf("%w: local cores should be positive: %d", ErrInvalidRequest, r.LocalCores)
		}
		if r.Jobs <= 0 {
			return fmt.Errorf("%w: jobs should be positive: %d", ErrInvalidRequest, r.Jobs)
		}
	}
	if r.Mode == ModeRemote && !slices.Contains(ClusterEngines, r.ClusterEngine) {
		return fmt.Errorf("%w: unknown cluster engine %q", ErrInvalidRequest, r.ClusterEngine)
	}
	if r.MaxMemory != nil && r.MaxMemory.Sign() <= 0 {
		return fmt.Errorf("%w: max memory should be positive: %s", ErrInvalidRequest, r.MaxMemory)
	}
	return nil
}

func (r Request) touching() bool {
	return r.Touch || slices.Contains(r.Extra, "--touch")
}

// Args builds arguments for the workflow engine.
//
// The request is validated first.
func (r Request) Args() ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"--snakefile", r.Snakefile,
		"--configfile", r.ConfigFile,
		"--cores", strconv.Itoa(r.Cores),
		"--until", r.Task,
	}
	args = append(args, r.Extra...)

	if r.touching() {
		if r.Touch && !slices.Contains(r.Extra, "--touch") {
			args = append(args, "--touch")
		}
		return args, nil
	}

	condaPrefix := func() ([]string, error) {
		if r.CondaPrefix == "" {
			return nil, nil
		}
		p, err := spath.Expand(r.CondaPrefix)
		if err != nil {
			return nil, err
		}
		return []string{"--conda-prefix", p}, nil
	}

	if r.CondaCreateEnvsOnly {
		args = append(args, "--use-conda", "--conda-create-envs-only")
		cp, err := condaPrefix()
		if err != nil {
			return nil, err
		}
		args = append(args, cp...)
	} else {
		args = append(args, "--rerun-incomplete", "--keep-going", "--printshellcmds")

		if r.UseConda {
			args = append(args, "--use-conda")
			cp, err := condaPrefix()
			if err != nil {
				return nil, err
			}
			args = append(args, cp...)
		}

		switch r.Mode {
		case ModeList:
			args = append(args, "--list")
		case ModeLocal:
			args = append(args,
				"--local-cores", strconv.Itoa(r.LocalCores),
				"--jobs", strconv.Itoa(r.Jobs),
			)
		case ModeRemote:
			args = append(args,
				"--profile", filepath.Join(r.profileRoot(), r.ClusterEngine),
				"--local-cores", strconv.Itoa(r.LocalCores),
				"--jobs", strconv.Itoa(r.Jobs),
			)
		case ModeDebug:
			args = append(args, "--debug-dag")
		default:
			args = append(args, "--dry-run")
		}

		if r.DryRun && !slices.Contains(args, "--dry-run") {
			args = append(args, "--dry-run")
		}
	}

	if r.MaxMemory != nil {
		args = append(args, "--resources", "mem_mb="+strconv.FormatInt(r.MaxMemory.ScaledValue(resource.Mega), 10))
	}

	return args, nil
}

func (r Request) profileRoot() string {
	if r.ProfileRoot == "" {
		return "profiles"
	}
	return r.ProfileRoot
}
