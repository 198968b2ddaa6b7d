package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing identity")
)

// errWrap annotates an error with the operation and its sentinel kind so
// callers can errors.Is against the kind.
func errWrap(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
