package buildtime_test

import (
	"strings"
	"testing"

	"github.com/ohmeta/strainpi/pkg/buildtime"
)

func TestVersionString(t *testing.T) {
	v := buildtime.VersionString()
	if !strings.HasPrefix(v, "strainpi version "+buildtime.VERSION()) {
		t.Errorf("unexpected version string: %s", v)
	}
	if !strings.Contains(v, "(commit: "+buildtime.GIT_REVISION()+")") {
		t.Errorf("revision is missing: %s", v)
	}
	if buildtime.VERSION() == "" {
		t.Error("VERSION is empty")
	}
}
