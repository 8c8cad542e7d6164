package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/ohmeta/strainpi/pkg/utils/open"
)

// Permission of config files written by strainpi.
const FileMode = os.FileMode(0644)

// Save writes the document to the file.
//
// The existing file is copied to "<path>.backup" before it is rewritten.
// The backup is removed after the document is written successfully, and kept otherwise.
func (d *Document) Save(path string) error {
	saving := false

	content, err := d.Bytes()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0755)); err != nil {
		return err
	}

	bkpath := path + ".backup"
	bk, err := open.NewFile(bkpath, FileMode)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(path, os.O_RDWR, FileMode)
	if err == nil {
		if err := acl.Chmod(path, FileMode); err != nil {
			f.Close()
			return err
		}
	} else {
		if os.IsPermission(err) {
			return fmt.Errorf(
				"%w, because no permission to write file at %s",
				ErrCannotUpdateConfig, path,
			)
		} else if os.IsNotExist(err) {
			f_, err_ := open.NewFile(path, FileMode)
			if err_ != nil {
				return fmt.Errorf(
					"%w: cannot create a file at %s: %w",
					ErrCannotCreateConfig, path, err_,
				)
			}
			f = f_
		} else {
			return err
		}
	}
	defer f.Close()

	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		return err
	}

	saving = false
	return nil
}
