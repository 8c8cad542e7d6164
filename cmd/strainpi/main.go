package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"slices"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/extensions"
	subident "github.com/ohmeta/strainpi/cmd/strainpi/subcommands/identify"
	subinit "github.com/ohmeta/strainpi/cmd/strainpi/subcommands/init"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/logger"
	subsamples "github.com/ohmeta/strainpi/cmd/strainpi/subcommands/samples"
	subver "github.com/ohmeta/strainpi/cmd/strainpi/subcommands/version"
	"github.com/ohmeta/strainpi/pkg/buildtime"
	"github.com/ohmeta/strainpi/pkg/utils/try"
	"github.com/ohmeta/strainpi/pkg/workflow"
	"github.com/youta-t/flarc"
)

var builtins = []string{"init", subident.WORKFLOW, "samples", "extensions", "version"}

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	if 1 < len(os.Args) {
		switch sub := os.Args[1]; sub {
		case "-v", "--version":
			fmt.Println(buildtime.VersionString())
			return
		default:
			if slices.Contains(builtins, sub) {
				break
			}
			if ext, ok := extensions.Lookup(extensions.PREFIX, sub); ok {
				os.Exit(runExtension(ctx, ext, os.Args[2:]))
			}
		}
	}

	init := try.To(subinit.New()).OrFatal(logger)
	identify := try.To(subident.New()).OrFatal(logger)
	samples := try.To(subsamples.New()).OrFatal(logger)
	exts := try.To(extensions.New(extensions.PREFIX)).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	strainpi := try.To(
		flarc.NewCommandGroup(
			"A pipeline for metagenomic strain identification.",
			struct{}{},
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand(subident.WORKFLOW, identify),
			flarc.WithSubcommand("samples", samples),
			flarc.WithSubcommand("extensions", exts),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, strainpi, flarc.WithHelp(true)))
}

func runExtension(ctx context.Context, ext extensions.Extension, args []string) int {
	runner := workflow.NewExecRunner()
	runner.Env = extensions.Environ()

	err := extensions.Exec(ctx, runner, ext, args)
	if err == nil {
		return 0
	}
	if exitErr := new(workflow.ExitError); errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "[strainpi %s] %s\n", ext.Name, err)
	return 1
}
