package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/policy"

	"gorm.io/gorm"
)

const userNotFound = "user not found"

type UserService interface {
	List(ctx context.Context, search string, page dto.PageRequest) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	// UpdateMe applies a self-service update. The role is read-only here and
	// silently kept.
	UpdateMe(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, search string, page dto.PageRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, strings.TrimSpace(search), page.Page, page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(users, dto.FromModelToUserResponse), total, nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)
	if err := s.checkUnique(ctx, req.Username, email); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = policy.RoleUser
	}
	user := &models.User{
		Username:  req.Username,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translateWrite(err)
	}

	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

// checkUnique reports every identity field that is already taken. Empty
// values are skipped.
func (s *userService) checkUnique(ctx context.Context, username, email string) error {
	fields := apperror.Fields{}
	if username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			fields["username"] = uniqueFields["idx_users_username"].message
		}
	}
	if email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			fields["email"] = uniqueFields["idx_users_email"].message
		}
	}
	if len(fields) > 0 {
		return apperror.ValidationWithFields("validation failed", fields)
	}
	return nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, userNotFound)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, userNotFound)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, userNotFound)
	}
	return s.apply(ctx, user, req)
}

func (s *userService) UpdateMe(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, userNotFound)
	}
	req.Role = nil
	return s.apply(ctx, user, req)
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var newUsername, newEmail string
	if req.Username != nil && *req.Username != user.Username {
		newUsername = *req.Username
	}
	if req.Email != nil {
		if e := normalizeEmail(*req.Email); e != user.Email {
			newEmail = e
		}
	}
	if err := s.checkUnique(ctx, newUsername, newEmail); err != nil {
		return nil, err
	}

	var columns []string
	if newUsername != "" {
		user.Username = newUsername
		columns = append(columns, "username")
	}
	if newEmail != "" {
		user.Email = newEmail
		columns = append(columns, "email")
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
		columns = append(columns, "first_name")
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
		columns = append(columns, "last_name")
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		columns = append(columns, "bio")
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperror.Fieldf("role", "%q is not a valid role", *req.Role)
		}
		user.Role = *req.Role
		columns = append(columns, "role")
	}

	if err := s.userRepo.Update(ctx, user, columns...); err != nil {
		return nil, translateWrite(err)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return notFound(err, userNotFound)
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(userNotFound)
		}
		return err
	}
	return nil
}
