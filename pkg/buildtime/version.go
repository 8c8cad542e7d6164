package buildtime

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
}

// version string of this strainpi build.
func VERSION() string {
	return version
}

func GIT_REVISION() string {
	return revision
}

// VersionString is the line printed by `strainpi --version` and `strainpi version`.
func VersionString() string {
	return "strainpi version " + version + " (commit: " + revision + ")"
}
