package try_test

import (
	"errors"
	"testing"

	"github.com/ohmeta/strainpi/pkg/utils/try"
)

type fataler struct {
	fatal [][]any
}

func (f *fataler) Fatal(args ...any) {
	f.fatal = append(f.fatal, args)
}

type helperFataler struct {
	fataler
	helper uint
}

func (hf *helperFataler) Helper() {
	hf.helper += 1
}

func TestTry(t *testing.T) {
	t.Run("when it does not have error, it returns the value", func(t *testing.T) {
		testee := try.To(42, nil)

		f := &fataler{}
		if got := testee.OrFatal(f); got != 42 {
			t.Errorf("OrFatal: (actual, expected) = (%d, %d)", got, 42)
		}
		if len(f.fatal) != 0 {
			t.Errorf("Fatal is called unexpectedly: %v", f.fatal)
		}
		if got := testee.OrDefault(7); got != 42 {
			t.Errorf("OrDefault: (actual, expected) = (%d, %d)", got, 42)
		}
		if got, err := testee.Get(); got != 42 || err != nil {
			t.Errorf("Get: (%d, %v)", got, err)
		}
	})

	t.Run("when it has error, it calls Fatal and Helper", func(t *testing.T) {
		expectedErr := errors.New("fake error")
		testee := try.To(42, expectedErr)

		f := &helperFataler{}
		if got := testee.OrFatal(f); got != 0 {
			t.Errorf("OrFatal returns non-zero value: %d", got)
		}
		if len(f.fatal) != 1 || f.fatal[0][0] != expectedErr {
			t.Errorf("Fatal is not called with the error: %v", f.fatal)
		}
		if f.helper != 1 {
			t.Errorf("Helper is called %d times", f.helper)
		}
		if got := testee.OrDefault(7); got != 7 {
			t.Errorf("OrDefault: (actual, expected) = (%d, %d)", got, 7)
		}
		if _, err := testee.Get(); !errors.Is(err, expectedErr) {
			t.Errorf("Get: unexpected error %v", err)
		}
	})
}
