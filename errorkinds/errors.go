// Package errorkinds holds the sentinel errors shared across the obexftp
// client engine and its discovery package, so callers can use errors.Is
// regardless of which package actually returned the wrapped error.
package errorkinds

import "errors"

// The different general error types.
var (
	ErrSessionNotExist = errors.New("session does not exist")
	ErrSessionBusy     = errors.New("a request is already in flight on this session")

	ErrTransportInit    = errors.New("cannot open transport")
	ErrTransportClosed  = errors.New("transport is closed")
	ErrLinkError        = errors.New("link error")
	ErrProtocolFailure  = errors.New("server responded with a non-success status")
	ErrConnectRejected  = errors.New("connect was rejected for all candidate target UUIDs")

	ErrInvalidAddress = errors.New("invalid Bluetooth address")
	ErrAdapterNotFound = errors.New("adapter not found")

	ErrLocalFileOpen  = errors.New("cannot open local file")
	ErrLocalFileStat  = errors.New("cannot stat local path")
	ErrLocalFileWrite = errors.New("cannot write local file")

	ErrDiscoveryFailed = errors.New("inquiry failed")
	ErrServiceNotFound = errors.New("service not found on remote device")

	ErrInvalidArgument = errors.New("invalid argument")
)

// GenericError wraps a chain of errors for transport across an event boundary.
type GenericError struct {
	Errors error
}

// Error returns the formatted error as string.
func (e GenericError) Error() string {
	return e.Errors.Error()
}

// Unwrap unwraps all errors associated with this error.
func (e GenericError) Unwrap() error {
	return e.Errors
}
