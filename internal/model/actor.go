package model

import "fmt"

// Role is the closed set of roles the workflow recognizes.
type Role string

const (
	RoleMember  Role = "member"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSuper   Role = "super"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleAdmin, RoleManager, RoleSuper:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanReview reports whether the role may approve, reject, roll back or
// remove guides. This is the single reviewer predicate consumed by every
// reviewer-gated operation.
func (r Role) CanReview() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSuper:
		return true
	}
	return false
}

// Actor is the caller identity resolved by the auth layer: who is acting,
// with which role, inside which tenant. The workflow trusts it without
// re-deriving it.
type Actor struct {
	ID       string
	Role     Role
	TenantID string
}
