package gateway

import (
	"errors"
	"net"
	"strings"
)

// Error codes for the SysScope console.
const (
	ErrPlanRequired      = "PLAN_REQUIRED"
	ErrPlanEmpty         = "PLAN_EMPTY"
	ErrPlanFrozen        = "PLAN_FROZEN"
	ErrExecutionActive   = "EXECUTION_ACTIVE"
	ErrExecutionRejected = "EXECUTION_REJECTED"
	ErrReportNotFound    = "REPORT_NOT_FOUND"
	ErrInvalidParameter  = "INVALID_PARAMETER"
	ErrInvalidConfig     = "INVALID_CONFIG"
	ErrAPIError          = "API_ERROR"
	ErrAPITimeout        = "API_TIMEOUT"
	ErrNetworkError      = "NETWORK_ERROR"
)

// GatewayError carries a console error code, message, and suggestion.
type GatewayError struct {
	Code       string
	Message    string
	Suggestion string

	// httpStatus is set by the HTTP client so callers can refine codes
	// (e.g. 404 on a report fetch becomes REPORT_NOT_FOUND).
	httpStatus int
}

func (e *GatewayError) Error() string {
	return e.Message
}

// NewGatewayError creates a GatewayError with the given code, message, and suggestion.
func NewGatewayError(code, message, suggestion string) *GatewayError {
	return &GatewayError{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// MapNetworkError determines if an error is a network error and returns the appropriate code.
func MapNetworkError(err error) (code string, isNetwork bool) {
	if err == nil {
		return "", false
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrNetworkError, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrNetworkError, true
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "i/o timeout") {
		return ErrNetworkError, true
	}

	if strings.Contains(msg, "context deadline exceeded") {
		return ErrAPITimeout, true
	}

	return "", false
}
