package try

// Fataler is something which can stop the current flow with a message.
//
// *testing.T and *log.Logger satisfy this.
type Fataler interface {
	Fatal(...any)
}

// Either is a pair of (T, error) returned from a function call.
//
// It is "ok" when the error is nil. Otherwise, the T value must not be used.
type Either[T any] interface {
	// Get returns (value, nil) when ok, or (zero-value, error).
	Get() (T, error)

	// OrFatal returns the value when ok. Otherwise it calls ftl.Fatal(err).
	//
	// When ftl has a `Helper()` method (like *testing.T), it is called before `Fatal`.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value when ok, or d.
	OrDefault(d T) T
}

// To wraps a (value, error) pair, typically the result of a function call.
//
//	conf := try.To(config.Load(path)).OrFatal(t)
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

type tryNg[T any] struct {
	err error
}

func (ok tryOk[T]) Get() (T, error) {
	return ok.value, nil
}

func (ng tryNg[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ok tryOk[T]) OrDefault(T) T {
	return ok.value
}

func (ng tryNg[T]) OrDefault(d T) T {
	return d
}

func (ok tryOk[T]) OrFatal(Fataler) T {
	return ok.value
}

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)

	return *new(T)
}
