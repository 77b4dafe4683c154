package service

import (
	"fmt"

	"payment-relay/internal/models"
)

// ValidationError means the caller sent something we will not forward.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayProtocolError means the gateway answered but gave us no token.
type GatewayProtocolError struct {
	Diagnostic models.Diagnostic
}

func (e *GatewayProtocolError) Error() string {
	if e.Diagnostic.ResultCode == "" {
		return "no token in gateway response"
	}
	return fmt.Sprintf("no token in gateway response (resultCode=%s, codes=%v)",
		e.Diagnostic.ResultCode, e.Diagnostic.MessageCodes)
}

// TransportError covers everything between us and a readable gateway answer:
// dial failures, timeouts, non-2xx statuses, unreadable bodies.
type TransportError struct {
	StatusCode int
	Hint       string
	Diagnostic *models.Diagnostic
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Hint)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway request failed: %v", e.Err)
	}
	return "gateway request failed: " + e.Hint
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
