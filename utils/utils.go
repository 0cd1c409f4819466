// Package utils provides utility functions for the application.
package utils

// ContextKey types request-scoped context values so they cannot collide with
// keys set by other packages
type ContextKey string

// Context keys set by the HTTP layer for each request
const (
	RequestIDKey  ContextKey = "X-Request-ID"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// Deref returns the value behind p, or zero when p is nil
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
