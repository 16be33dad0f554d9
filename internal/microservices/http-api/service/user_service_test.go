package service

import (
	"context"
	"testing"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestUserService_CreateRejectsTakenIdentity(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("ExistsByUsername", ctx, "frank").Return(true, nil)
	repo.On("ExistsByEmail", ctx, "frank@example.com").Return(true, nil)

	_, err := svc.Create(ctx, dto.CreateUserRequest{Username: "frank", Email: "Frank@example.com"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	fields := apperror.From(err).Fields
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("ExistsByUsername", ctx, "gina").Return(false, nil)
	repo.On("ExistsByEmail", ctx, "gina@example.com").Return(false, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == policy.RoleUser
	})).Return(nil)

	resp, err := svc.Create(ctx, dto.CreateUserRequest{Username: "gina", Email: "gina@example.com", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "gina", resp.Username)
	assert.Equal(t, policy.RoleUser, resp.Role)
	assert.Equal(t, "hi", resp.Bio)
}

func TestUserService_GetUnknown(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("FindByUsername", ctx, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserService_AdminUpdateChangesRole(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	user := &models.User{ID: "u1", Username: "hal", Email: "hal@example.com", Role: policy.RoleUser}
	repo.On("FindByUsername", ctx, "hal").Return(user, nil)
	repo.On("Update", ctx, user, []string{"first_name", "role"}).Return(nil)

	role := policy.RoleModerator
	resp, err := svc.Update(ctx, "hal", dto.UpdateUserRequest{Role: &role, FirstName: strPtr("Hal")})
	require.NoError(t, err)
	assert.Equal(t, policy.RoleModerator, resp.Role)
	assert.Equal(t, "Hal", resp.FirstName)
}

func TestUserService_UpdateMeKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	user := &models.User{ID: "u1", Username: "ivy", Role: policy.RoleUser}
	repo.On("FindByID", ctx, "u1").Return(user, nil)
	repo.On("Update", ctx, user, []string{"bio"}).Return(nil)

	role := policy.RoleAdmin
	resp, err := svc.UpdateMe(ctx, "u1", dto.UpdateUserRequest{Role: &role, Bio: strPtr("reader")})
	require.NoError(t, err)
	assert.Equal(t, policy.RoleUser, resp.Role)
	assert.Equal(t, "reader", resp.Bio)
}

func TestUserService_UpdateMeRenames(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	user := &models.User{ID: "u1", Username: "ivy", Email: "ivy@example.com", Role: policy.RoleUser}
	repo.On("FindByID", ctx, "u1").Return(user, nil)
	repo.On("ExistsByUsername", ctx, "ivy2").Return(false, nil)
	repo.On("Update", ctx, user, []string{"username"}).Return(nil)

	role := policy.RoleUser
	resp, err := svc.UpdateMe(ctx, "u1", dto.UpdateUserRequest{Role: &role, Username: strPtr("ivy2")})
	require.NoError(t, err)
	assert.Equal(t, "ivy2", resp.Username)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("FindByUsername", ctx, "jo").Return(&models.User{ID: "u9", Username: "jo"}, nil)
	repo.On("Delete", ctx, "u9").Return(nil)
	repo.On("FindByUsername", ctx, "nobody").Return(nil, gorm.ErrRecordNotFound)

	assert.NoError(t, svc.Delete(ctx, "jo"))
	assert.ErrorIs(t, svc.Delete(ctx, "nobody"), apperror.ErrNotFound)
}
