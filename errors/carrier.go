package errors

// Carrier transports an error across call layers that cannot return one,
// such as the push callbacks driving a pipeline sink chain. The error is
// raised with Tunnel, travels as a panic value, and is restored with
// Recover at the evaluation boundary. The boundary is the only place that
// unwraps: intermediate layers let the panic pass through untouched.
type Carrier struct {
	err error
}

// WrapCarrier wraps err in a Carrier. If err is already a Carrier it is
// returned unchanged, so repeated wrapping cannot stack. A nil err is a
// programming error and panics immediately with a plain message.
func WrapCarrier(err error) *Carrier {
	if err == nil {
		panic("errors: WrapCarrier called with nil error")
	}
	if c, ok := err.(*Carrier); ok {
		return c
	}
	return &Carrier{err: err}
}

// Error implements the error interface.
func (c *Carrier) Error() string {
	return c.err.Error()
}

// Unwrap returns the original error, preserving identity for errors.Is
// and errors.As chains.
func (c *Carrier) Unwrap() error {
	return c.err
}

// Tunnel raises err as a carrier panic. It does nothing for a nil err.
// Callers inside sink callbacks use this to abort evaluation; the
// terminal operation recovers the carrier and returns the original error.
func Tunnel(err error) {
	if err == nil {
		return
	}
	panic(WrapCarrier(err))
}

// Recover inspects a value obtained from recover(). A nil value yields
// nil. A carrier yields the original error it transports. Any other
// value is re-raised unchanged, so genuine runtime faults and foreign
// panics keep their identity and stack semantics.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if c, ok := r.(*Carrier); ok {
		return c.err
	}
	panic(r)
}
