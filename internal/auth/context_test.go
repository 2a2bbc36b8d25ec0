package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns nil for empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Nil(t, FromContext(ctx))
	})

	t.Run("returns claims from context", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "user_123",
			},
			Email: "test@example.com",
		}
		ctx := WithClaims(context.Background(), claims)

		got := FromContext(ctx)
		assert.NotNil(t, got)
		assert.Equal(t, "user_123", got.Subject)
		assert.Equal(t, "test@example.com", got.Email)
	})
}

func TestUserID(t *testing.T) {
	t.Run("returns empty string for empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", UserID(ctx))
	})

	t.Run("returns user ID from claims", func(t *testing.T) {
		ctx := WithClaims(context.Background(), NewTestClaims("usr_abc123", ""))
		assert.Equal(t, "usr_abc123", UserID(ctx))
	})
}

func TestEmail(t *testing.T) {
	t.Run("returns empty string for empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", Email(ctx))
	})

	t.Run("returns email from claims", func(t *testing.T) {
		ctx := WithClaims(context.Background(), NewTestClaims("", "user@example.com"))
		assert.Equal(t, "user@example.com", Email(ctx))
	})
}

func TestIsAuthenticated(t *testing.T) {
	t.Run("returns false for empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.False(t, IsAuthenticated(ctx))
	})

	t.Run("returns true when claims present", func(t *testing.T) {
		ctx := WithClaims(context.Background(), &Claims{})
		assert.True(t, IsAuthenticated(ctx))
	})
}

func TestHasPermission(t *testing.T) {
	t.Run("returns false for empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.False(t, HasPermission(ctx, "read:audits"))
	})

	t.Run("returns false for missing permission", func(t *testing.T) {
		claims := &Claims{
			Permissions: []string{"read:audits", "write:audits"},
		}
		ctx := WithClaims(context.Background(), claims)
		assert.False(t, HasPermission(ctx, "delete:audits"))
	})

	t.Run("returns true for existing permission", func(t *testing.T) {
		claims := &Claims{
			Permissions: []string{"read:audits", "write:audits"},
		}
		ctx := WithClaims(context.Background(), claims)
		assert.True(t, HasPermission(ctx, "read:audits"))
	})
}
