package commandline

import (
	"io"
	"strings"

	"github.com/youta-t/flarc"
)

// MockCommandline is a flarc.Commandline for testing tasks.
//
// Unset streams behave as empty input and discarded outputs.
type MockCommandline[T any] struct {
	Fullname_ string

	Stdin_  io.Reader
	Stdout_ io.Writer
	Stderr_ io.Writer

	Flags_ T
	Args_  map[string][]string
}

var _ flarc.Commandline[struct{}] = &MockCommandline[struct{}]{}

func (t MockCommandline[T]) Fullname() string {
	return t.Fullname_
}

func (t MockCommandline[T]) Stdin() io.Reader {
	if t.Stdin_ == nil {
		return strings.NewReader("")
	}
	return t.Stdin_
}

func (t MockCommandline[T]) Stdout() io.Writer {
	if t.Stdout_ == nil {
		return io.Discard
	}
	return t.Stdout_
}

func (t MockCommandline[T]) Stderr() io.Writer {
	if t.Stderr_ == nil {
		return io.Discard
	}
	return t.Stderr_
}

func (t MockCommandline[T]) Flags() T {
	return t.Flags_
}

func (t MockCommandline[T]) Args() map[string][]string {
	if t.Args_ == nil {
		return map[string][]string{}
	}
	return t.Args_
}
