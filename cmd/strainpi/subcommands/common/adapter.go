package common

import (
	"context"
	"fmt"
	"log"

	"github.com/youta-t/flarc"
)

// Task is a flarc task taking a logger.
type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask makes Task into flarc.Task.
//
// The logger writes to stderr of the commandline, with prefix "[<full command name>] ".
func NewTask[T any](task Task[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(ctx, logger, cl, pos)
	}
}
