package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrObjectNotFound is returned when the backend explicitly reports a missing key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrBackendUnavailable marks connection-level failures: the store could not be reached at all.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// classifyNetworkError tags transport failures with ErrBackendUnavailable.
// Context cancellation is passed through untouched.
func classifyNetworkError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return err
}
