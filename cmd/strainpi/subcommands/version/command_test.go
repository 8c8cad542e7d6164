package version_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/internal/commandline"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/version"
	"github.com/ohmeta/strainpi/pkg/buildtime"
)

func TestVersion(t *testing.T) {
	stdout := new(bytes.Buffer)
	err := version.Task(
		context.Background(),
		commandline.MockCommandline[struct{}]{
			Fullname_: "strainpi version",
			Stdout_:   stdout,
			Stderr_:   io.Discard,
		},
		[]any{},
	)
	if err != nil {
		t.Fatal(err)
	}
	if expected := buildtime.VersionString() + "\n"; stdout.String() != expected {
		t.Errorf("(actual, expected) = (%q, %q)", stdout.String(), expected)
	}
}
