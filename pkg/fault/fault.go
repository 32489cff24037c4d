package fault

import (
	"errors"
	"fmt"
)

// Kind classifies where in a tool run an error originated.
type Kind int

const (
	// ClientConstruction covers failures before any service traffic:
	// missing credentials, malformed endpoints, bad client options.
	ClientConstruction Kind = iota + 1
	// RemoteCall covers transport failures and error responses from the
	// service, including runs that end in a non-completed terminal state.
	RemoteCall
	// ResponseShape covers successful responses whose bodies do not
	// decode into the expected structure.
	ResponseShape
)

func (k Kind) String() string {
	switch k {
	case ClientConstruction:
		return "client_construction"
	case RemoteCall:
		return "remote_call"
	case ResponseShape:
		return "response_shape"
	default:
		return "unknown"
	}
}

// Error pairs an error with its kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches a kind and operation to err. Returns nil when err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of the outermost classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
