package path

import (
	"os"
	"path/filepath"
	"strings"
)

const tilde = "~" + string(filepath.Separator)

// Expand replaces leading "~" of the path with the user's home directory.
//
// Other paths are returned as they are, not cleaned nor made absolute.
func Expand(pathstring string) (string, error) {
	if pathstring != "~" && !strings.HasPrefix(pathstring, tilde) {
		return pathstring, nil
	}
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homedir, pathstring[1:]), nil
}

// return absolute representation of path, with expanding "~" to user's home directory.
//
// args:
//   - pathstring: path to be resolved
//
// return:
//   - string: resolved filepath
//   - error
func Resolve(pathstring string) (string, error) {
	p, err := Expand(pathstring)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}

// ResolveAgainst is like Resolve, but relative paths are resolved from base instead of
// the current working directory.
//
// base itself is resolved with Resolve.
func ResolveAgainst(base string, pathstring string) (string, error) {
	p, err := Expand(pathstring)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	b, err := Resolve(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(b, p), nil
}
