package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anon      = Anonymous()
	plainUser = Actor{Authenticated: true, UserID: "u1", Role: RoleUser}
	moderator = Actor{Authenticated: true, UserID: "m1", Role: RoleModerator}
	admin     = Actor{Authenticated: true, UserID: "a1", Role: RoleAdmin}
	superuser = Actor{Authenticated: true, UserID: "s1", Role: RoleUser, IsSuperuser: true}
)

var writeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsSafeMethod(m), m)
	}
	for _, m := range writeMethods {
		assert.False(t, IsSafeMethod(m), m)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}

func TestAdminOrReadOnly(t *testing.T) {
	tests := []struct {
		name   string
		method string
		actor  Actor
		want   Decision
	}{
		{"anonymous read", http.MethodGet, anon, Allow},
		{"user read", http.MethodGet, plainUser, Allow},
		{"anonymous write", http.MethodPost, anon, DenyUnauthenticated},
		{"user write", http.MethodPost, plainUser, DenyForbidden},
		{"moderator write", http.MethodDelete, moderator, DenyForbidden},
		{"admin write", http.MethodPatch, admin, Allow},
		{"superuser write", http.MethodDelete, superuser, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdminOrReadOnly(tt.method, tt.actor))
		})
	}
}

func TestAdminOrReadOnly_AllWriteMethods(t *testing.T) {
	for _, m := range writeMethods {
		assert.Equal(t, DenyForbidden, AdminOrReadOnly(m, plainUser), m)
		assert.Equal(t, Allow, AdminOrReadOnly(m, admin), m)
	}
}

func TestAuthenticatedOrReadOnly(t *testing.T) {
	assert.Equal(t, Allow, AuthenticatedOrReadOnly(http.MethodGet, anon))
	assert.Equal(t, DenyUnauthenticated, AuthenticatedOrReadOnly(http.MethodPost, anon))
	assert.Equal(t, Allow, AuthenticatedOrReadOnly(http.MethodPost, plainUser))
	assert.Equal(t, Allow, AuthenticatedOrReadOnly(http.MethodPost, moderator))
}

func TestAuthorOrStaff(t *testing.T) {
	tests := []struct {
		name   string
		method string
		actor  Actor
		author string
		want   Decision
	}{
		{"anyone reads", http.MethodGet, anon, "u1", Allow},
		{"anonymous write", http.MethodPatch, anon, "u1", DenyUnauthenticated},
		{"author updates", http.MethodPatch, plainUser, "u1", Allow},
		{"author deletes", http.MethodDelete, plainUser, "u1", Allow},
		{"other user updates", http.MethodPatch, plainUser, "u2", DenyForbidden},
		{"moderator updates", http.MethodPatch, moderator, "u2", Allow},
		{"admin deletes", http.MethodDelete, admin, "u2", Allow},
		{"superuser deletes", http.MethodDelete, superuser, "u2", Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorOrStaff(tt.method, tt.actor, tt.author))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	assert.Equal(t, DenyUnauthenticated, AdminOnly(http.MethodGet, anon))
	assert.Equal(t, DenyForbidden, AdminOnly(http.MethodGet, plainUser))
	assert.Equal(t, DenyForbidden, AdminOnly(http.MethodGet, moderator))
	assert.Equal(t, Allow, AdminOnly(http.MethodDelete, admin))
	assert.Equal(t, Allow, AdminOnly(http.MethodPost, superuser))
}

func TestSelf(t *testing.T) {
	assert.Equal(t, DenyUnauthenticated, Self(http.MethodGet, anon))
	assert.Equal(t, Allow, Self(http.MethodPatch, plainUser))
	assert.Equal(t, Allow, Self(http.MethodGet, moderator))
}

func TestActorFlags(t *testing.T) {
	// An unauthenticated actor never counts as staff even if role fields are set.
	ghost := Actor{Role: RoleAdmin, IsSuperuser: true}
	assert.False(t, ghost.IsAdmin())
	assert.False(t, ghost.IsStaff())

	assert.True(t, superuser.IsAdmin())
	assert.True(t, moderator.IsStaff())
	assert.False(t, moderator.IsAdmin())
	assert.False(t, plainUser.IsStaff())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unauthenticated", DenyUnauthenticated.String())
	assert.Equal(t, "forbidden", DenyForbidden.String())
	assert.True(t, Allow.Allowed())
	assert.False(t, DenyForbidden.Allowed())
}
