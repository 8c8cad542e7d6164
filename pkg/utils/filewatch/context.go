package filewatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context that is canceled
// when one of target files is modified (= written, created, removed, or renamed).
//
// When a directory is passed, changes on its direct entries are watched.
//
// # Returns
//
// - context.Context: context that is canceled when one of target files is modified.
// Its cause tells which file is updated.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
//
// If error is not nil, both of the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			}
		}
	}()

	for _, f := range targetFilePath {
		if err = w.Add(f); err != nil {
			cancel(err)
			return nil, nil, err
		}
	}
	return cctx, func() { cancel(nil) }, nil
}

// ErrTimeout is returned by WaitExist when the file does not appear in time.
var ErrTimeout = errors.New("timeout")

// WaitExist blocks until the file at path exists, or timeout elapses.
//
// The parent directory of path must exist.
//
// # Returns
//
// - nil when the file exists (possibly already before calling).
//
// - error wrapping ErrTimeout when it does not appear within timeout,
// or ctx.Err() when ctx is done before that.
func WaitExist(ctx context.Context, path string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir := filepath.Dir(path)
	for {
		wctx, stop, err := UntilModifyContext(tctx, dir)
		if err != nil {
			return err
		}

		// the file may be created before the watcher starts.
		if _, err := os.Stat(path); err == nil {
			stop()
			return nil
		}

		<-wctx.Done()
		stop()

		if err := tctx.Err(); err != nil {
			if _, serr := os.Stat(path); serr == nil {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w: %s does not appear in %s", ErrTimeout, path, timeout)
			}
			return err
		}
	}
}
