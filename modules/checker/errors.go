package checker

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for verification operations, designed for error wrapping and
// classification.
//
// Error classification strategy:
// - Configuration errors: invalid setup or parameters (fail fast)
// - Transient errors: network or parse failures (retried up to a budget)
// - Exhaustion errors: retry budget or credential pool spent (fold to indeterminate)
var (
	ErrInvalidConfiguration = errors.New("invalid checker configuration")
	ErrEndpointNotResolved  = errors.New("marketplace api endpoint not resolved")
	ErrMalformedResponse    = errors.New("malformed data source response")
	ErrRetriesExhausted     = errors.New("retry budget exhausted")
	ErrCredentialsExhausted = errors.New("all protocol credentials exhausted")
	ErrUnexpectedStatusCode = errors.New("unexpected http status code")
)

// FloodWaitError signals that a data source demanded a pause of a specific
// duration before the next request.
type FloodWaitError struct {
	Duration time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait for %s", e.Duration)
}

// AsFloodWait extracts the mandated pause from an error chain.
func AsFloodWait(err error) (time.Duration, bool) {
	var fw *FloodWaitError
	if errors.As(err, &fw) {
		return fw.Duration, true
	}
	return 0, false
}
