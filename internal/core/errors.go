package core

import (
	"errors"
	"fmt"
)

// AuthError reports rejected credentials. It is fatal to the cycle that
// hit it; the controller retries with a fresh session next interval.
type AuthError struct {
	Server string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Server, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConnectionError reports a network or TLS failure reaching the server.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError reports a failed or malformed server exchange. UID is
// zero when the failure is not tied to a single message.
type ProtocolError struct {
	Op  string
	UID uint32
	Err error
}

func (e *ProtocolError) Error() string {
	if e.UID != 0 {
		return fmt.Sprintf("%s failed for message %d: %v", e.Op, e.UID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsAuthError reports whether err wraps an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsConnectionError reports whether err wraps a ConnectionError
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsProtocolError reports whether err wraps a ProtocolError
func IsProtocolError(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr)
}
