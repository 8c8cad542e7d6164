package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ohmeta/strainpi/pkg/config"
	"github.com/ohmeta/strainpi/pkg/utils/filewatch"
)

var ErrManifestNotFound = errors.New("sample manifest is not found")

// CheckManifest confirms that the sample manifest named in the config exists.
//
// The manifest is at "params.samples" of the config.
//
// # Args
//
// - ctx
//
// - doc: config document
//
// - wait: when the manifest is missing, it waits up to this duration for it to appear.
// Zero or negative means no waiting.
//
// # Returns
//
// - string: path of the manifest
//
// - error: wrapping ErrManifestNotFound when it is not specified or does not exist.
func CheckManifest(ctx context.Context, doc *config.Document, wait time.Duration) (string, error) {
	manifest, ok := doc.String("params", "samples")
	if !ok || manifest == "" {
		return "", fmt.Errorf(
			"%w: please specify samples on init step or change params.samples in config manually",
			ErrManifestNotFound,
		)
	}

	_, err := os.Stat(manifest)
	if err == nil {
		return manifest, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if 0 < wait {
		if _, err := os.Stat(filepath.Dir(manifest)); err == nil {
			err := filewatch.WaitExist(ctx, manifest, wait)
			if err == nil {
				return manifest, nil
			}
			if !errors.Is(err, filewatch.ErrTimeout) {
				return "", err
			}
		}
	}

	return "", fmt.Errorf(
		"%w: %s. please specify samples on init step or change params.samples in config manually",
		ErrManifestNotFound, manifest,
	)
}
