// Package authz holds the role and ownership rules consulted before every
// workflow operation. It has no I/O: callers resolve profile ids first.
package authz

import (
	"fmt"
	"slices"

	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/pkg/apperror"
	"github.com/google/uuid"
)

// Principal is the authenticated caller, built by the auth middleware from a
// verified token and an existing user row.
type Principal struct {
	UserID uuid.UUID
	Role   entity.Role
	Name   string
}

// Rule describes who may perform an operation.
type Rule struct {
	// Roles allowed to call the operation. Empty means any authenticated role.
	Roles []entity.Role
	// Owner is the profile (or user) id recorded on the resource, if the
	// operation is resource scoped.
	Owner *uuid.UUID
	// AllowAdminOverride lets ADMIN act on a resource it does not own.
	AllowAdminOverride bool
}

type Decision struct {
	Allowed bool
	Reason  string
	err     error
}

// Err converts a deny decision into an apperror-wrapped error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%s: %w", d.Reason, d.err)
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string, err error) Decision {
	return Decision{Reason: reason, err: err}
}

// Authorize applies the role layer then the ownership layer. callerOwnerID is
// the caller's id in the same id space as rule.Owner, re-derived server side.
func Authorize(p *Principal, callerOwnerID uuid.UUID, rule Rule) Decision {
	if p == nil || p.UserID == uuid.Nil {
		return deny("authentication required", apperror.ErrUnauthorized)
	}

	if len(rule.Roles) > 0 && !slices.Contains(rule.Roles, p.Role) {
		return deny(fmt.Sprintf("role %s is not allowed", p.Role), apperror.ErrForbidden)
	}

	if rule.Owner == nil {
		return allow()
	}

	if callerOwnerID != uuid.Nil && *rule.Owner == callerOwnerID {
		return allow()
	}

	if rule.AllowAdminOverride && p.Role == entity.RoleAdmin {
		return allow()
	}

	return deny("not the owner of this resource", apperror.ErrForbidden)
}

// RequireRole is the role-only form of Authorize.
func RequireRole(p *Principal, roles ...entity.Role) error {
	return Authorize(p, uuid.Nil, Rule{Roles: roles}).Err()
}
