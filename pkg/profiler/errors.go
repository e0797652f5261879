package profiler

import (
	"errors"
	"fmt"
)

// InvalidStateError reports an operation requested from a state that
// forbids it. The measurement's state is unchanged when it is returned.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a %s measurement", e.Op, e.State)
}

// IsInvalidState reports whether err is (or wraps) an invalid state error
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
