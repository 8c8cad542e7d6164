package common

import (
	"os"
	"path/filepath"
	"strings"

	sos "github.com/ohmeta/strainpi/pkg/utils/os"
)

// ENV_SNAKEFILE is the environment variable to override the default snakefile.
const ENV_SNAKEFILE = "STRAINPI_SNAKEFILE"

// ENV_WORKDIR is the environment variable passed to extension commands.
const ENV_WORKDIR = "STRAINPI_WORKDIR"

// DefaultSnakefile returns the snakefile of the workflow used when --snakefile is not given.
//
// It is $STRAINPI_SNAKEFILE if set.
// Otherwise, "<dir of executable>/../share/strainpi/snakefiles/<workflow>.smk".
func DefaultSnakefile(workflow string) string {
	return sos.GetEnvOrElse(ENV_SNAKEFILE, func() string {
		name := workflow + ".smk"
		exe, err := os.Executable()
		if err != nil {
			return filepath.Join("snakefiles", name)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), "..", "share", "strainpi", "snakefiles", name)
	})
}

// SplitList splits values of a repeatable flag, each of which may be comma separated.
//
// Empty items are dropped, and duplicates are removed keeping the first one.
func SplitList(values []string) []string {
	ret := []string{}
	seen := map[string]struct{}{}
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			ret = append(ret, item)
		}
	}
	return ret
}
