package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"reviewhub/database"
	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/middleware/auth"
	"reviewhub/internal/token"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxRegisterAttempts = 3
	usernameSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxUsernameBase     = 140
)

var usernameInvalidChars = regexp.MustCompile(`[^\w.@+-]`)

// CodeNotifier delivers a confirmation code out of band.
type CodeNotifier interface {
	SendConfirmationCode(ctx context.Context, to, username, code string) error
}

// TokenIssuer mints and verifies access tokens.
type TokenIssuer interface {
	Issue(s token.Subject) (string, error)
	Parse(tokenString string) (*token.Claims, error)
}

type AuthService interface {
	// Register creates the user if needed and sends a fresh confirmation
	// code. created reports whether a new account was made.
	Register(ctx context.Context, email string) (resp *dto.RegisterResponse, created bool, err error)
	IssueToken(ctx context.Context, email, code string) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer token to the current user record.
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type AuthOptions struct {
	CodeLength int
	// SingleUseCodes clears the stored code after a token is issued.
	SingleUseCodes bool
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	notifier CodeNotifier
	log      *zap.Logger
	opts     AuthOptions
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	notifier CodeNotifier,
	log *zap.Logger,
	opts AuthOptions,
) AuthService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = 8
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		opts:     opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, email string) (*dto.RegisterResponse, bool, error) {
	email = normalizeEmail(email)

	code, err := auth.GenerateCode(s.opts.CodeLength)
	if err != nil {
		return nil, false, err
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, false, fmt.Errorf("hash confirmation code: %w", err)
	}

	var (
		user    *models.User
		created bool
	)
	// a concurrent registration for the same email or username loses the
	// unique index race; retrying turns it into a re-issue
	for attempt := 1; ; attempt++ {
		user, created, err = s.storeCode(ctx, email, hash)
		if err == nil {
			break
		}
		if _, dup := database.UniqueViolation(err); !dup || attempt == maxRegisterAttempts {
			return nil, false, err
		}
	}

	if err := s.notifier.SendConfirmationCode(ctx, user.Email, user.Username, code); err != nil {
		s.log.Warn("queue confirmation email", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.log.Info("confirmation code issued", zap.String("user_id", user.ID), zap.Bool("new_user", created))
	return &dto.RegisterResponse{Email: user.Email, Username: user.Username}, created, nil
}

const confirmationCodeColumn = "confirmation_code_hash"

// storeCode saves hash on the user with this email, creating the user first
// when none exists.
func (s *authService) storeCode(ctx context.Context, email, hash string) (*models.User, bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		user.ConfirmationCode = hash
		if err := s.userRepo.Update(ctx, user, confirmationCodeColumn); err != nil {
			return nil, false, err
		}
		return user, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	username, err := s.deriveUsername(ctx, email)
	if err != nil {
		return nil, false, err
	}
	user = &models.User{Email: email, Username: username, ConfirmationCode: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// deriveUsername builds a username from the local part of email, adding a
// random suffix when it is taken.
func (s *authService) deriveUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := usernameInvalidChars.ReplaceAllString(local, "")
	if len(base) > maxUsernameBase {
		base = base[:maxUsernameBase]
	}
	if !apperror.IsUsername(base) {
		base = "user"
	}

	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix, err := gonanoid.Generate(usernameSuffixChars, 6)
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		candidate = base + "-" + suffix
	}
	return "", errors.New("could not find a free username")
}

func (s *authService) IssueToken(ctx context.Context, email, code string) (*dto.TokenResponse, error) {
	noMatch := apperror.NotFound("no user with this email and confirmation code")

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.BurnCompare(code)
			return nil, noMatch
		}
		return nil, err
	}
	if !auth.VerifyCode(user.ConfirmationCode, code) {
		return nil, noMatch
	}

	signed, err := s.tokens.Issue(token.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	if s.opts.SingleUseCodes {
		user.ConfirmationCode = ""
		if err := s.userRepo.Update(ctx, user, confirmationCodeColumn); err != nil {
			return nil, err
		}
	}

	s.log.Info("access token issued", zap.String("user_id", user.ID))
	return &dto.TokenResponse{Token: signed}, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, apperror.Unauthorized("token has expired")
		}
		return nil, apperror.Unauthorized("invalid token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}
