// Package workflow builds and runs workflow engine (snakemake) invocations.
package workflow

import "errors"

var ErrInvalidRequest = errors.New("invalid run request")

// Checkpoints are targets which the identification workflow can stop at.
var Checkpoints = []string{
	"prepare_reads_all",
	"raw_fastqc_all",
	"raw_report_all",
	"raw_all",
	"trimming_sickle_all",
	"trimming_fastp_all",
	"trimming_trimmomatic_all",
	"trimming_report_all",
	"trimming_all",
	"rmhost_bwa_all",
	"rmhost_bowtie2_all",
	"rmhost_minimap2_all",
	"rmhost_report_all",
	"rmhost_all",
	"qcreport_all",
	"alignment_bowtie2_all",
	"alignment_strobealign_all",
	"alignment_all",
	"all",
}

const DefaultTask = "all"

// ClusterEngines are supported cluster workload managers.
var ClusterEngines = []string{"slurm", "sge", "lsf", "pbs-torque"}

const DefaultClusterEngine = "slurm"

// Mode is how the workflow engine runs.
type Mode int

const (
	// ModeDryRun only shows what would be done.
	ModeDryRun Mode = iota

	// ModeList lists rules.
	ModeList

	// ModeLocal runs jobs on this computer.
	ModeLocal

	// ModeRemote submits jobs to a cluster.
	ModeRemote

	// ModeDebug shows the job DAG.
	ModeDebug
)

func (m Mode) String() string {
	switch m {
	case ModeDryRun:
		return "dry-run"
	case ModeList:
		return "list"
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	case ModeDebug:
		return "debug"
	}
	return "unknown"
}

// ModeOf decides the mode from flags.
//
// When more than one flag is true, the first one (in order of arguments) wins.
// When none is true, it is ModeDryRun.
func ModeOf(list, local, remote, debug bool) Mode {
	switch {
	case list:
		return ModeList
	case local:
		return ModeLocal
	case remote:
		return ModeRemote
	case debug:
		return ModeDebug
	}
	return ModeDryRun
}
