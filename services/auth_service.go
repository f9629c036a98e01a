package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/repository"
)

// AuthService handles registration, login and session checks.
// Handlers depend on this interface, not on the struct.
type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error)
	// ValidateSession resolves a raw token to its active principal.
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

type authService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	codec     *TokenCodec
	validator *TokenValidator
	loader    *PrincipalLoader
	logger    log.Logger

	allowRoleSelection bool
}

// NewAuthService wires the auth flow. Every collaborator is required.
// Unless allowRoleSelection is set, Register ignores the requested role and
// creates ROLE_USER accounts; admins come from the seeder.
func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	codec *TokenCodec,
	validator *TokenValidator,
	loader *PrincipalLoader,
	allowRoleSelection bool,
	l log.Logger,
) AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		validator: validator,
		loader:    loader,
		logger:    logger.Component(l, "auth"),

		allowRoleSelection: allowRoleSelection,
	}
}

// Register creates an active account and returns a session for it.
// Username and e-mail must both be unused.
func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username is already taken", pkg.ErrAlreadyExists)
	}

	inUse, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, fmt.Errorf("%w: email is already in use", pkg.ErrAlreadyExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if s.allowRoleSelection {
		role = req.Role
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.codec.Now().UTC(),
	}
	// The repository maps a lost race on the unique indexes to ErrAlreadyExists.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	level.Info(s.logger).Log("msg", "user registered", "user", user.Username, "role", user.Role)
	return s.session(user, "User registered successfully!")
}

// Login checks credentials and returns a new session. Unknown usernames
// and wrong passwords get the same answer.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", pkg.ErrForbidden)
	}

	now := s.codec.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.session(user, "Login successful!")
}

// ValidateSession decodes token, loads its subject and validates the token
// against it. Failures keep their kind (see KindOf).
func (s *authService) ValidateSession(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	principal, err := s.loader.LoadByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	if !principal.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", pkg.ErrForbidden)
	}

	if err := s.validator.Verify(token, principal); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *authService) session(user *models.User, message string) (*AuthResult, error) {
	role := models.NormalizeRole(user.Role)

	token, err := s.codec.Issue(user.Username, map[string]any{"role": role})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:    token,
		Username: user.Username,
		Role:     role,
		Message:  message,
	}, nil
}
