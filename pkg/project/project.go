// Package project sets up strainpi project directories and their configuration.
package project

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/ohmeta/strainpi/pkg/config"
	"github.com/ohmeta/strainpi/pkg/utils/open"
	spath "github.com/ohmeta/strainpi/pkg/utils/path"
)

//go:embed assets
var assets embed.FS

const (
	assetTemplate = "assets/config.yaml"
	assetEnvs     = "assets/envs"
	assetProfiles = "assets/profiles"
)

const (
	ConfigFileName = "config.yaml"

	DirEnvs     = "envs"
	DirProfiles = "profiles"
	DirLogs     = "logs"
	DirResults  = "results"
)

// Template returns the default configuration.
func Template() (*config.Document, error) {
	buf, err := assets.ReadFile(assetTemplate)
	if err != nil {
		return nil, err
	}
	return config.Parse(assetTemplate, buf)
}

// Engines returns names of cluster engines which have a profile.
func Engines() []string {
	entries, err := assets.ReadDir(assetProfiles)
	if err != nil {
		return nil
	}
	ret := []string{}
	for _, e := range entries {
		if e.IsDir() {
			ret = append(ret, e.Name())
		}
	}
	slices.Sort(ret)
	return ret
}

// Project is a directory where the pipeline runs.
type Project struct {
	// Workdir is the absolute path of the project directory.
	Workdir string
}

// New returns a Project at workdir.
//
// workdir is resolved into an absolute path. The directory does not need to exist.
func New(workdir string) (*Project, error) {
	if workdir == "" {
		return nil, fmt.Errorf("workdir is empty")
	}
	wd, err := spath.Resolve(workdir)
	if err != nil {
		return nil, err
	}
	return &Project{Workdir: wd}, nil
}

func (p *Project) ConfigFile() string {
	return filepath.Join(p.Workdir, ConfigFileName)
}

func (p *Project) EnvsDir() string {
	return filepath.Join(p.Workdir, DirEnvs)
}

func (p *Project) ProfilesDir() string {
	return filepath.Join(p.Workdir, DirProfiles)
}

// CreateDirs creates the project directory and its subdirectories.
//
// Existing directories are left as they are.
func (p *Project) CreateDirs() error {
	dirs := []string{
		p.EnvsDir(),
		filepath.Join(p.Workdir, DirLogs),
		filepath.Join(p.Workdir, DirResults),
	}
	for _, engine := range Engines() {
		dirs = append(dirs, filepath.Join(p.ProfilesDir(), engine))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, os.FileMode(0755)); err != nil {
			return err
		}
	}
	return nil
}

const assetBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{percent . }}`

// CopyAssets copies conda environment files and cluster profiles into the project.
//
// Files which exist already are not overwritten.
//
// # Args
//
// - progress: destination of the progress bar.
//
// # Returns
//
// - []string: paths of copied files
//
// - error
func (p *Project) CopyAssets(progress io.Writer) ([]string, error) {
	type copying struct {
		src  string
		dest string
	}
	files := []copying{}

	for _, root := range []string{assetEnvs, assetProfiles} {
		err := fs.WalkDir(assets, root, func(name string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel := strings.TrimPrefix(name, "assets/")
			files = append(files, copying{
				src:  name,
				dest: filepath.Join(p.Workdir, filepath.FromSlash(rel)),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	bar := assetBar.New(len(files))
	bar.SetWriter(progress)
	bar.Set("prefix", "copying envs and profiles:")
	if err := bar.Err(); err != nil {
		return nil, err
	}
	bar.Start()
	defer bar.Finish()

	copied := []string{}
	for _, c := range files {
		ok, err := copyAsset(c.src, c.dest)
		if err != nil {
			return copied, err
		}
		if ok {
			copied = append(copied, c.dest)
		}
		bar.Increment()
	}

	return copied, nil
}

func copyAsset(src string, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.FileMode(0755)); err != nil {
		return false, err
	}

	in, err := assets.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := open.NewFile(dest, config.FileMode)
	if err != nil {
		return false, err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return false, err
	}
	return true, nil
}

// RewriteEnvs makes a new document whose envs point to files in the project.
//
// Each "envs.<name>" becomes "<workdir>/envs/<name>.yaml".
func (p *Project) RewriteEnvs(doc *config.Document) (*config.Document, error) {
	ret := doc.Clone()
	for _, name := range ret.Keys("envs") {
		envfile := filepath.Join(p.EnvsDir(), name+".yaml")
		if err := ret.Set(envfile, "envs", name); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (p *Project) String() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "strainpi project: %s\n\n", p.Workdir)
	fmt.Fprintf(b, "  config:   %s\n", p.ConfigFile())
	fmt.Fprintf(b, "  envs:     %s\n", p.EnvsDir())
	fmt.Fprintf(b, "  profiles: %s\n", p.ProfilesDir())
	fmt.Fprintf(b, "  logs:     %s\n", filepath.Join(p.Workdir, DirLogs))
	fmt.Fprintf(b, "  results:  %s\n", filepath.Join(p.Workdir, DirResults))
	b.WriteString("\nPlease review the config file, then run the pipeline:\n\n")
	fmt.Fprintf(b, "  strainpi identify_wf --workdir %s --dry-run\n", p.Workdir)
	fmt.Fprintf(b, "  strainpi identify_wf --workdir %s --run-local --use-conda\n", p.Workdir)
	fmt.Fprintf(b, "  strainpi identify_wf --workdir %s --run-remote --use-conda --cluster-engine slurm\n", p.Workdir)
	return b.String()
}
