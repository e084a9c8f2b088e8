// Package gateway provides the thin outbound adapters the bridge uses to
// talk to the chat service (Telegram Bot API) and the monitor (Sentry).
//
// Each operation is a single attempt bounded by the shared HTTP client
// timeout. There is no internal retry loop: the monitor re-sends
// unacknowledged alerts, and the store-level uniqueness check keeps that
// redelivery safe, so retry responsibility deliberately lives upstream.
package gateway

import "fmt"

// GatewayError wraps a failed outbound call with the operation that failed.
// Callers branch on the operation name for logging and surface the wrapped
// cause via errors.Is/errors.As.
type GatewayError struct {
	// Op names the failed operation, e.g. "telegram.createForumTopic".
	Op string
	// Err is the underlying transport or API error.
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *GatewayError) Unwrap() error { return e.Err }
