// Package context provides contexts bound to the running test.
package context

import (
	"context"
	"testing"
	"time"
)

// WithTest derives a context which is done 1 second before the test times out,
// so that waiting code gives up while the test can still report.
//
// The context is also cancelled when the test finishes.
func WithTest(ctx context.Context, t *testing.T) context.Context {
	t.Helper()
	var cancel context.CancelFunc
	if deadline, ok := t.Deadline(); ok {
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-time.Second))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	t.Cleanup(cancel)
	return ctx
}
