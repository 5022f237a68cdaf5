package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(SubjectClaims{UserID: "u-7", Role: RoleAdmin})
	require.NoError(t, err)

	t.Run("NoHeader", func(t *testing.T) {
		res := codec.Resolve("")
		assert.Equal(t, StatusUnauthenticated, res.Status)
		assert.False(t, res.Principal.Authenticated)
		assert.NoError(t, res.Reason)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		res := codec.Resolve("Basic " + token)
		assert.Equal(t, StatusInvalid, res.Status)
		assert.Error(t, res.Reason)
	})

	t.Run("BearerWithoutToken", func(t *testing.T) {
		res := codec.Resolve("Bearer ")
		assert.Equal(t, StatusInvalid, res.Status)
	})

	t.Run("BadToken", func(t *testing.T) {
		res := codec.Resolve("Bearer not-a-token")
		assert.Equal(t, StatusInvalid, res.Status)
		assert.ErrorIs(t, res.Reason, ErrSignatureInvalid)
		assert.False(t, res.Principal.Authenticated)
	})

	t.Run("Valid", func(t *testing.T) {
		res := codec.Resolve("Bearer " + token)
		assert.Equal(t, StatusAuthenticated, res.Status)
		assert.Equal(t, Principal{Authenticated: true, UserID: "u-7", Role: RoleAdmin}, res.Principal)
	})
}

func TestAuthorize(t *testing.T) {
	member := Principal{Authenticated: true, UserID: "m-1", Role: RoleMember}
	admin := Principal{Authenticated: true, UserID: "a-1", Role: RoleAdmin}

	assert.NoError(t, Authorize(member))
	assert.NoError(t, Authorize(admin, RoleAdmin))
	assert.NoError(t, Authorize(member, RoleAdmin, RoleMember))
	assert.ErrorIs(t, Authorize(member, RoleAdmin), ErrAccessDenied)

	// anonymous callers fail closed, with or without a role requirement
	assert.ErrorIs(t, Authorize(Principal{}), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(Principal{}, RoleAdmin), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(Principal{Role: RoleAdmin, UserID: "x"}, RoleAdmin), ErrUnauthenticated)
}

func TestPrincipalContext(t *testing.T) {
	assert.Equal(t, Principal{}, PrincipalFrom(context.Background()))

	p := Principal{Authenticated: true, UserID: "u-1", Role: RoleMember}
	ctx := WithPrincipal(context.Background(), p)
	assert.Equal(t, p, PrincipalFrom(ctx))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "password123"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
	BurnPasswordCheck("anything")
}
