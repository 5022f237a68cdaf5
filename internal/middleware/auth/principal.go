package auth

import (
	"context"
	"errors"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAccessDenied    = errors.New("access denied")
)

// Principal is the identity attached to a request by one of the auth gates.
// The zero value is an anonymous caller.
type Principal struct {
	Authenticated bool
	UserID        string
	Role          Role
}

// Status is the outcome of resolving an Authorization header.
type Status int

const (
	// StatusUnauthenticated means no credentials were presented.
	StatusUnauthenticated Status = iota
	// StatusInvalid means credentials were presented but rejected.
	StatusInvalid
	StatusAuthenticated
)

// Resolution is what both gates decide on. Reason is set only for StatusInvalid.
type Resolution struct {
	Status    Status
	Principal Principal
	Reason    error
}

// Resolve parses "Bearer <token>" and verifies it. It never fails; the gate
// reading the result chooses whether to reject.
func (c *TokenCodec) Resolve(authorizationHeader string) Resolution {
	if strings.TrimSpace(authorizationHeader) == "" {
		return Resolution{Status: StatusUnauthenticated}
	}

	scheme, token, ok := strings.Cut(authorizationHeader, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return Resolution{Status: StatusInvalid, Reason: ErrSignatureInvalid}
	}

	claims, err := c.Verify(strings.TrimSpace(token))
	if err != nil {
		return Resolution{Status: StatusInvalid, Reason: err}
	}

	return Resolution{
		Status: StatusAuthenticated,
		Principal: Principal{
			Authenticated: true,
			UserID:        claims.UserID,
			Role:          claims.Role,
		},
	}
}

// Authorize fails closed: an anonymous principal is never allowed, and when
// roles are given the principal's role must be one of them.
func Authorize(p Principal, roles ...Role) error {
	if !p.Authenticated || p.UserID == "" {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return ErrAccessDenied
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the anonymous principal when none was attached.
func PrincipalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}
