package extensions

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/common"
	sos "github.com/ohmeta/strainpi/pkg/utils/os"
	"github.com/ohmeta/strainpi/pkg/workflow"
	"github.com/youta-t/flarc"
)

// PREFIX is the prefix of executable names which are extension commands.
const PREFIX = "strainpi-"

// Extension is an executable on PATH, used as a subcommand.
//
// For example, "strainpi-report" on PATH is the subcommand "report".
type Extension struct {
	Name string
	Path string
}

// Find searches PATH for executables with the prefix.
//
// When names conflict, the one found first wins.
func Find(prefix string) []Extension {
	found := []Extension{}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	known := map[string]struct{}{}

	for _, p := range paths {
		if p == "" {
			p = "."
		}
		files, err := os.ReadDir(p)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasPrefix(f.Name(), prefix) {
				continue
			}
			abspath, err := exec.LookPath(filepath.Join(p, f.Name()))
			if err != nil {
				continue
			}
			if a, err := filepath.Abs(abspath); err == nil {
				abspath = a
			}
			name := strings.TrimPrefix(f.Name(), prefix)
			for _, executableExt := range []string{".exe", ".bat", ".cmd", ".com"} {
				if strings.HasSuffix(name, executableExt) {
					name = strings.TrimSuffix(name, executableExt)
					break
				}
			}
			if _, ok := known[name]; ok || name == "" {
				continue
			}
			found = append(found, Extension{Name: name, Path: abspath})
			known[name] = struct{}{}
		}
	}

	return found
}

// Lookup finds the extension with the name.
func Lookup(prefix string, name string) (Extension, bool) {
	for _, ext := range Find(prefix) {
		if ext.Name == name {
			return ext, true
		}
	}
	return Extension{}, false
}

// Environ returns environment variables passed to extensions, in addition to ours.
func Environ() []string {
	workdir := sos.GetEnvOrElse(common.ENV_WORKDIR, func() string {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	})
	return []string{common.ENV_WORKDIR + "=" + workdir}
}

// Exec runs the extension with args, and waits for it.
//
// # Returns
//
// - error: *workflow.ExitError when the extension exits with non-zero status.
func Exec(ctx context.Context, runner workflow.Runner, ext Extension, args []string) error {
	return runner.Run(ctx, ext.Path, args)
}

// New returns the command listing extensions.
func New(prefix string) (flarc.Command, error) {
	return flarc.NewCommand(
		"List extension commands.",
		struct{}{},
		flarc.Args{},
		common.NewTask(Task(func() []Extension { return Find(prefix) })),
		flarc.WithDescription(fmt.Sprintf(`
List extension commands.

Executables named "%[1]s<NAME>" in PATH are extension commands.
They can be run as "strainpi <NAME> ARGS...".
Environment variable %[2]s is passed to them.
`, prefix, common.ENV_WORKDIR)),
	)
}

func Task(find func() []Extension) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cl flarc.Commandline[struct{}],
		_ []any,
	) error {
		exts := find()
		if len(exts) == 0 {
			logger.Println("no extension commands are found in PATH")
			return nil
		}

		w := tabwriter.NewWriter(cl.Stdout(), 0, 4, 2, ' ', 0)
		for _, ext := range exts {
			fmt.Fprintf(w, "%s\t%s\n", ext.Name, ext.Path)
		}
		return w.Flush()
	}
}
