package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned for run parameters rejected before any generation begins
var ErrInvalidConfiguration = errors.New("invalid configuration")

// InvalidConfigurationf wraps ErrInvalidConfiguration with detail
func InvalidConfigurationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// TransportError reports a batch the sink rejected or failed to acknowledge.
// Transferred is the count durably written before the failure.
type TransportError struct {
	Transferred int64
	Batch       int64
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed on batch %d after %d events: %v", e.Batch, e.Transferred, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
