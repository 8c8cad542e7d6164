package version

import (
	"context"
	"fmt"

	"github.com/ohmeta/strainpi/pkg/buildtime"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show version of strainpi.",
		struct{}{},
		flarc.Args{},
		Task,
	)
}

func Task(ctx context.Context, c flarc.Commandline[struct{}], a []any) error {
	_, err := fmt.Fprintln(c.Stdout(), buildtime.VersionString())
	return err
}
