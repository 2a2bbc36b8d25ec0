package auth

import (
	"context"
)

type contextKey int

const (
	claimsKey contextKey = iota
)

// FromContext returns the claims from context, or nil if not authenticated.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// UserID returns the token subject from context, or empty string if not
// authenticated.
func UserID(ctx context.Context) string {
	claims := FromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// Email returns the user's email from context, or empty string if not available.
func Email(ctx context.Context) string {
	claims := FromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Email
}

// IsAuthenticated returns true if the request has valid authentication.
func IsAuthenticated(ctx context.Context) bool {
	return FromContext(ctx) != nil
}

// HasPermission checks if the user has a specific permission.
func HasPermission(ctx context.Context, permission string) bool {
	claims := FromContext(ctx)
	if claims == nil {
		return false
	}
	for _, p := range claims.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
