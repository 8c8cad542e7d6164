//go:build !windows

package open

import "os"

// NewFile creates a new empty file with the permission.
//
// If the file already exists, it will be truncated and its permission is changed to perm.
func NewFile(filepath string, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(filepath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, perm)
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
