package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"authportal/internal/auth"
	apperrors "authportal/internal/errors"
	"authportal/internal/metrics"
	"authportal/internal/repository"
)

// AuthService handles the credential lifecycle: activation, login and
// password reset.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*auth.Identity, error)
	ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	// AllowedEmailDomain is the domain registration and reset accept, without '@'.
	AllowedEmailDomain string
}

type authService struct {
	users   repository.UserRepository
	hasher  auth.PasswordHasher
	opts    AuthOptions
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	opts AuthOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:   users,
		hasher:  hasher,
		opts:    opts,
		metrics: m,
		logger:  logger.With("component", "auth_service"),
	}
}

// Register activates a provisioned account by setting its first password.
// Accounts that do not exist cannot register, and accounts that already
// have a password are rejected.
func (s *authService) Register(ctx context.Context, email, password string) error {
	err := s.register(ctx, email, password)
	s.metrics.Registration(outcome(err))
	return err
}

func (s *authService) register(ctx context.Context, email, password string) error {
	if !s.allowedEmail(email) {
		return apperrors.ErrInvalidEmailDomain
	}

	res := s.users.FindByEmail(ctx, email)
	switch res.Status {
	case repository.LookupUnavailable:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, res.Err)
	case repository.LookupNotFound:
		return apperrors.ErrNotAllowedToRegister
	}
	if res.User.HasPassword() {
		return apperrors.ErrAlreadyRegistered
	}

	if err := s.storeNewPassword(ctx, email, password); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "activated account", "email", email)
	return nil
}

// Login verifies email and password. Unknown emails and wrong passwords
// both yield ErrInvalidCredentials after the same hashing work.
func (s *authService) Login(ctx context.Context, email, password string) (*auth.Identity, error) {
	res := s.users.FindByEmail(ctx, email)
	if res.Status == repository.LookupUnavailable {
		s.metrics.Login(metrics.ResultUnavailable)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, res.Err)
	}

	var hash string
	if res.Found() {
		hash = res.User.Hash()
	}
	if !s.hasher.Verify(password, hash) || !res.Found() {
		s.metrics.Login(metrics.ResultRejected)
		return nil, apperrors.ErrInvalidCredentials
	}

	s.metrics.Login(metrics.ResultSuccess)
	identity := auth.NewIdentity(res.User.Email, res.User.UserGroup)
	return &identity, nil
}

// ResetPassword replaces the password of an existing account. Knowing the
// email is the only proof of ownership required.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	err := s.resetPassword(ctx, email, newPassword, confirmPassword)
	s.metrics.PasswordReset(outcome(err))
	return err
}

func (s *authService) resetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	if !s.allowedEmail(email) {
		return apperrors.ErrInvalidEmailDomain
	}
	if newPassword != confirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	res := s.users.FindByEmail(ctx, email)
	switch res.Status {
	case repository.LookupUnavailable:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, res.Err)
	case repository.LookupNotFound:
		return apperrors.ErrEmailNotFound
	}

	if err := s.storeNewPassword(ctx, email, newPassword); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "email", email)
	return nil
}

func (s *authService) storeNewPassword(ctx context.Context, email, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if res := s.users.UpdatePasswordHash(ctx, email, hash); !res.OK() {
		return fmt.Errorf("%w: %s", apperrors.ErrPasswordUpdateFailed, res.Status)
	}
	return nil
}

func (s *authService) allowedEmail(email string) bool {
	return strings.HasSuffix(email, "@"+s.opts.AllowedEmailDomain)
}

func outcome(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindDatabase:
		return metrics.ResultUnavailable
	case apperrors.KindInternal:
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
