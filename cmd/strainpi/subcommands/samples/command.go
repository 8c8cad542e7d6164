package samples

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/common"
	"github.com/ohmeta/strainpi/pkg/samples"
	spath "github.com/ohmeta/strainpi/pkg/utils/path"
	"github.com/youta-t/flarc"
)

const ARG_MANIFEST = "MANIFEST"

// Manifest is the output of the command.
type Manifest struct {
	Scheme  samples.Scheme                 `json:"scheme"`
	Samples map[string]map[string][]string `json:"samples"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Validate a sample manifest.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_MANIFEST, Required: true,
				Help: "tab separated sample manifest.",
			},
		},
		common.NewTask(Task),
		flarc.WithDescription(`
Validate a sample manifest, and display raw inputs of each sample as JSON.

All problems in the manifest are reported at once.

Example
-------

    {{ .Command }} ./samples.tsv
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	cl flarc.Commandline[struct{}],
	_ []any,
) error {
	manifest, err := spath.Resolve(cl.Args()[ARG_MANIFEST][0])
	if err != nil {
		return err
	}

	table, scheme, err := samples.ValidateFile(manifest)
	if err != nil {
		return err
	}
	logger.Printf("%d samples in %s", len(table.SampleIDs()), manifest)

	out := Manifest{Scheme: scheme, Samples: map[string]map[string][]string{}}
	for _, id := range table.SampleIDs() {
		out.Samples[id] = table.RawInputMap(id)
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}
