package init

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/common"
	"github.com/ohmeta/strainpi/pkg/config"
	"github.com/ohmeta/strainpi/pkg/project"
	"github.com/ohmeta/strainpi/pkg/samples"
	kargs "github.com/ohmeta/strainpi/pkg/utils/args"
	spath "github.com/ohmeta/strainpi/pkg/utils/path"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Workdir      string        `flag:"workdir" alias:"d" metavar:"DIR" help:"project workdir."`
	Samples      string        `flag:"samples" alias:"s" metavar:"TSV" help:"sample manifest. Required."`
	Begin        *kargs.Choice `flag:"begin" alias:"b" metavar:"trimming|rmhost|identify" help:"pipeline starting point."`
	Trimmer      *kargs.Choice `flag:"trimmer" metavar:"sickle|fastp|trimmomatic" help:"which trimmer used."`
	Rmhoster     *kargs.Choice `flag:"rmhoster" metavar:"bwa|bowtie2|minimap2|kraken2|kneaddata" help:"which rmhost tool used."`
	Identifier   []string      `flag:"identifier" metavar:"strainphlan,instrain" help:"which strain identifier used. Repeatable, or comma separated."`
	GPU          *kargs.Choice `flag:"gpu" metavar:"true|false" help:"whether GPU is available."`
	CheckSamples bool          `flag:"check-samples" help:"validate the sample manifest before writing config."`
	Override     []string      `flag:"override" metavar:"YAML" help:"YAML file merged onto the template. Repeatable, applied in order."`
	Template     string        `flag:"template" metavar:"YAML" help:"use this file as the config template, instead of the default."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Init project.",
		Flag{
			Workdir:  "./",
			Begin:    kargs.NewChoice(project.BeginTrimming, project.Begins...),
			Trimmer:  kargs.NewChoice("fastp", project.Trimmers...),
			Rmhoster: kargs.NewChoice("bowtie2", project.Rmhosters...),
			GPU:      kargs.NewChoice("true", "true", "false"),
		},
		flarc.Args{},
		common.NewTask(Task),
		flarc.WithDescription(`
Init project.

It creates the project directory with conda environment files and cluster profiles,
and writes config.yaml selecting tools of the pipeline.

When config.yaml exists already, it is updated in place.
Comments and key order of the existing file are kept.

Example
-------

    {{ .Command }} -d ./project -s samples.tsv --trimmer fastp --rmhoster bowtie2

    {{ .Command }} -d ./project -s samples.tsv -b identify --identifier instrain

    {{ .Command }} -d ./project -s samples.tsv --override ./site.yaml
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	cl flarc.Commandline[Flag],
	_ []any,
) error {
	flags := cl.Flags()

	if flags.Workdir == "" {
		return fmt.Errorf("%w: please supply --workdir", flarc.ErrUsage)
	}
	if flags.Samples == "" {
		return fmt.Errorf("%w: please supply --samples", flarc.ErrUsage)
	}

	sel := project.DefaultSelection()
	sel.Begin = flags.Begin.Value()
	sel.Trimmer = flags.Trimmer.Value()
	sel.Rmhoster = flags.Rmhoster.Value()
	sel.GPU = flags.GPU.Value() == "true"
	if ids := common.SplitList(flags.Identifier); 0 < len(ids) {
		sel.Identifiers = ids
	}
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
	}

	manifest, err := spath.Resolve(flags.Samples)
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

	proj, err := project.New(flags.Workdir)
	if err != nil {
		return err
	}
	if err := proj.CreateDirs(); err != nil {
		return err
	}
	copied, err := proj.CopyAssets(cl.Stderr())
	if err != nil {
		return err
	}
	logger.Printf("%d files are copied into %s", len(copied), proj.Workdir)

	doc, err := loadTemplate(flags.Template)
	if err != nil {
		return err
	}
	for _, o := range flags.Override {
		p, err := spath.Resolve(o)
		if err != nil {
			return err
		}
		override, err := config.Load(p)
		if err != nil {
			return err
		}
		doc = config.Merge(doc, override, config.KeepExtra)
	}

	if doc, err = proj.RewriteEnvs(doc); err != nil {
		return err
	}
	if doc, err = project.Apply(doc, sel); err != nil {
		return err
	}
	if err := doc.Set(manifest, "params", "samples"); err != nil {
		return err
	}

	configFile := proj.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		current, err := config.Load(configFile)
		if err != nil {
			return err
		}
		doc = config.Merge(current, doc, config.RemoveExtra)
		logger.Printf("updating %s", configFile)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := doc.Save(configFile); err != nil {
		return err
	}
	logger.Printf(
		"config is saved at %s (begin: %s, trimmer: %s, rmhoster: %s, identifier: %s)",
		configFile, sel.Begin, sel.Trimmer, sel.Rmhoster, strings.Join(sel.Identifiers, ","),
	)

	_, err = fmt.Fprint(cl.Stdout(), proj.String())
	return err
}

func loadTemplate(template string) (*config.Document, error) {
	if template == "" {
		return project.Template()
	}
	p, err := spath.Resolve(template)
	if err != nil {
		return nil, err
	}
	return config.Load(p)
}
