// Package policy holds the access rules for the review API as pure functions
// over the request method, the calling actor and, for object-level checks,
// the author of the target resource.
package policy

import "net/http"

// Role is the enumerated role stored on a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Actor is the caller as seen by the policy functions.
type Actor struct {
	Authenticated bool
	UserID        string
	Username      string
	Role          Role
	IsSuperuser   bool
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// IsAdmin reports whether the actor is an authenticated admin or superuser.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Role == RoleAdmin || a.IsSuperuser)
}

// IsStaff reports whether the actor is a moderator, admin or superuser.
func (a Actor) IsStaff() bool {
	return a.Authenticated && (a.Role == RoleModerator || a.IsAdmin())
}

// Decision is the outcome of a policy check.
type Decision int

const (
	Allow Decision = iota
	// DenyUnauthenticated means the caller must authenticate first (401).
	DenyUnauthenticated
	// DenyForbidden means the caller is known but lacks permission (403).
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Rule is a collection-level policy usable by the HTTP middleware.
type Rule func(method string, a Actor) Decision

// IsSafeMethod reports whether method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func deny(a Actor) Decision {
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	return DenyForbidden
}

// AdminOrReadOnly guards categories, genres and titles: anyone reads,
// only admins and superusers write.
func AdminOrReadOnly(method string, a Actor) Decision {
	if IsSafeMethod(method) || a.IsAdmin() {
		return Allow
	}
	return deny(a)
}

// AuthenticatedOrReadOnly guards review and comment collections.
func AuthenticatedOrReadOnly(method string, a Actor) Decision {
	if IsSafeMethod(method) || a.Authenticated {
		return Allow
	}
	return deny(a)
}

// AuthorOrStaff guards a single review or comment. Writes are open to the
// author and to moderators, admins and superusers.
func AuthorOrStaff(method string, a Actor, authorID string) Decision {
	if IsSafeMethod(method) {
		return Allow
	}
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	if a.UserID == authorID || a.IsStaff() {
		return Allow
	}
	return DenyForbidden
}

// AdminOnly guards user management regardless of method.
func AdminOnly(_ string, a Actor) Decision {
	if a.IsAdmin() {
		return Allow
	}
	return deny(a)
}

// Self guards the /users/me endpoints: any authenticated caller.
func Self(_ string, a Actor) Decision {
	if a.Authenticated {
		return Allow
	}
	return DenyUnauthenticated
}
