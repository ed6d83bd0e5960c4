// Package identity carries the caller resolved by the authentication layer.
package identity

import (
	"context"
	"strings"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
)

// ParseRole maps an upstream role name onto the two roles the timeclock
// distinguishes. Admin tiers approve; everything else is an ordinary user.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approver", "admin", "superadmin", "manager":
		return RoleApprover
	default:
		return RoleUser
	}
}

// Actor is the pre-resolved identity of the caller.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsApprover() bool {
	return a.Role == RoleApprover
}

// CanAccess reports whether the actor may read a resource owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsApprover() || a.UserID == ownerID
}

// Origin is request metadata recorded with audit entries.
type Origin struct {
	IP        string
	UserAgent string
}

type originKey struct{}

func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey{}, o)
}

// OriginFrom returns the origin stored in ctx, or the zero Origin.
func OriginFrom(ctx context.Context) Origin {
	o, _ := ctx.Value(originKey{}).(Origin)
	return o
}
