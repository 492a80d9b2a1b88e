// Package authz delegates read authorization for audit logs to an
// arborist-compatible policy service.
package authz

import (
	"context"
	"errors"
)

const (
	// Service is the service name sent with every policy request.
	Service = "audit"
	// MethodRead is the action required to query logs.
	MethodRead = "read"
)

var (
	ErrUnauthenticated   = errors.New("missing or malformed access token")
	ErrForbidden         = errors.New("permission denied")
	ErrPolicyUnavailable = errors.New("policy service unavailable")
)

// Authorizer decides whether the bearer of token may perform method on resource.
// It returns nil when allowed, ErrForbidden when denied and ErrPolicyUnavailable
// when no decision could be obtained.
type Authorizer interface {
	Authorize(ctx context.Context, token, method, resource string) error
}

// Resource is the policy resource guarding a category's logs.
func Resource(category string) string {
	return "/services/audit/" + category
}
