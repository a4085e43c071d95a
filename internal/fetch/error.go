package fetch

import (
	"errors"
	"fmt"
)

// Error reports a failed page fetch: a malformed URL, a transport failure,
// a robots refusal or a non-2xx status. StatusCode is zero when no response
// was received.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsFetchError reports whether err is or wraps an *Error.
func IsFetchError(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}
