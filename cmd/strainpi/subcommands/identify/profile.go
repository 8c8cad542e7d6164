package identify

import (
	"path/filepath"

	"github.com/ohmeta/strainpi/pkg/project"
)

// profileRoot is where cluster profiles are, next to the config file.
func profileRoot(configFile string) string {
	return filepath.Join(filepath.Dir(configFile), project.DirProfiles)
}
