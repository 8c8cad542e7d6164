package extensions_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/common"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/extensions"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/internal/commandline"
	"github.com/ohmeta/strainpi/cmd/strainpi/subcommands/logger"
	"github.com/ohmeta/strainpi/pkg/cmp"
	"github.com/ohmeta/strainpi/pkg/utils/try"
	"github.com/ohmeta/strainpi/pkg/workflow"
)

func touch(t *testing.T, path string, content string, perm os.FileMode) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatal(err)
	}
	return try.To(filepath.Abs(path)).OrFatal(t)
}

func TestFind(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}

	dir1 := t.TempDir()
	dir2 := t.TempDir()
	dir3 := t.TempDir()

	want := []extensions.Extension{}

	// non executable
	touch(t, filepath.Join(dir1, "strainpi-plain"), "", 0600)
	// executable
	want = append(want, extensions.Extension{
		Name: "report",
		Path: touch(t, filepath.Join(dir1, "strainpi-report"), "", 0700),
	})
	// prefix does not match
	touch(t, filepath.Join(dir1, "not-strainpi-report"), "", 0700)

	// windows executable extensions are trimmed
	for _, ext := range []string{"exe", "bat", "cmd", "com"} {
		name := "with_suffix_" + ext
		want = append(want, extensions.Extension{
			Name: name,
			Path: touch(t, filepath.Join(dir2, "strainpi-"+name+"."+ext), "", 0700),
		})
	}
	// other extensions are not trimmed
	want = append(want, extensions.Extension{
		Name: "merge.py",
		Path: touch(t, filepath.Join(dir2, "strainpi-merge.py"), "", 0700),
	})

	// conflicted names are ignored
	touch(t, filepath.Join(dir3, "strainpi-report"), "", 0700)
	touch(t, filepath.Join(dir3, "strainpi-report.exe"), "", 0700)

	t.Setenv(
		"PATH",
		strings.Join([]string{dir1, dir2, dir3, dir1}, string(os.PathListSeparator)),
	)

	got := extensions.Find(extensions.PREFIX)
	if !cmp.SliceContentEq(want, got) {
		t.Errorf("want %v, got %v", want, got)
	}

	if ext, ok := extensions.Lookup(extensions.PREFIX, "report"); !ok || ext != want[0] {
		t.Errorf("Lookup: (%v, %v)", ext, ok)
	}
	if _, ok := extensions.Lookup(extensions.PREFIX, "plain"); ok {
		t.Error("Lookup finds non executable")
	}
}

func TestEnviron(t *testing.T) {
	t.Run("it passes workdir given to strainpi", func(t *testing.T) {
		t.Setenv(common.ENV_WORKDIR, "/data/project")
		if got := extensions.Environ(); !cmp.SliceEq(got, []string{"STRAINPI_WORKDIR=/data/project"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("it defaults to current directory", func(t *testing.T) {
		t.Setenv(common.ENV_WORKDIR, "")
		wd := try.To(os.Getwd()).OrFatal(t)
		if got := extensions.Environ(); !cmp.SliceEq(got, []string{"STRAINPI_WORKDIR=" + wd}) {
			t.Errorf("got %v", got)
		}
	})
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script is used")
	}

	dir := t.TempDir()
	ext := extensions.Extension{
		Name: "echo",
		Path: touch(
			t, filepath.Join(dir, "strainpi-echo"),
			"#!/bin/sh\necho \"$STRAINPI_WORKDIR\" \"$@\"\nexit \"${EXIT_CODE:-0}\"\n",
			0700,
		),
	}

	t.Run("it runs extension with args and environment", func(t *testing.T) {
		stdout := new(bytes.Buffer)
		runner := &workflow.ExecRunner{
			Stdout: stdout,
			Stderr: io.Discard,
			Env:    []string{"STRAINPI_WORKDIR=/data/project"},
		}
		if err := extensions.Exec(context.Background(), runner, ext, []string{"a", "b c"}); err != nil {
			t.Fatal(err)
		}
		if got := stdout.String(); got != "/data/project a b c\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("exit status is propagated", func(t *testing.T) {
		runner := &workflow.ExecRunner{
			Stdout: io.Discard,
			Stderr: io.Discard,
			Env:    []string{"EXIT_CODE=3"},
		}
		err := extensions.Exec(context.Background(), runner, ext, nil)
		var exitErr *workflow.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 3 {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestListTask(t *testing.T) {
	for name, testcase := range map[string]struct {
		exts []extensions.Extension
		want string
	}{
		"no extensions": {
			exts: []extensions.Extension{},
			want: "",
		},
		"some extensions": {
			exts: []extensions.Extension{
				{Name: "report", Path: "/usr/bin/strainpi-report"},
				{Name: "qc", Path: "/opt/bin/strainpi-qc"},
			},
			want: "report  /usr/bin/strainpi-report\n" +
				"qc      /opt/bin/strainpi-qc\n",
		},
	} {
		t.Run(name, func(t *testing.T) {
			stdout := new(bytes.Buffer)
			task := extensions.Task(func() []extensions.Extension { return testcase.exts })
			err := task(
				context.Background(),
				logger.Null(),
				commandline.MockCommandline[struct{}]{
					Fullname_: "strainpi extensions",
					Stdout_:   stdout,
					Stderr_:   io.Discard,
				},
				[]any{},
			)
			if err != nil {
				t.Fatal(err)
			}
			if got := stdout.String(); got != testcase.want {
				t.Errorf("(got, want) = (%q, %q)", got, testcase.want)
			}
		})
	}
}
