package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/mynews/mynews-api/internal/logging"
	"github.com/mynews/mynews-api/internal/user"
)

// RegisterInput is the payload for account registration
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate runs the registration validation rules
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required.Error("Email is required"), is.Email.Error("Invalid email")),
		validation.Field(&in.Password, validation.Required.Error("Password is required"), validation.Length(8, 0).Error("Password should be minimum 8 characters")),
		validation.Field(&in.FirstName, validation.Required.Error("First name is required")),
		validation.Field(&in.LastName, validation.Required.Error("Last name is required")),
	)
}

// LoginResult carries the session token and the profile fields returned
// after a successful login
type LoginResult struct {
	AccessToken string `json:"access_token"`
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
}

// Service orchestrates registration, login and the credential lifecycle
type Service struct {
	users         UserStore
	tokens        TokenService
	mailer        EmailSender
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	users UserStore,
	tokens TokenService,
	mailer EmailSender,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Register validates the input, persists a new inactive account and sends
// the activation email. The email send is best-effort: a failure is logged
// but does not fail the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	if err := in.Validate(); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			return "", newValidationError(fieldErrs)
		}
		return "", fmt.Errorf("failed to validate registration input: %w", err)
	}

	passwordHash, err := HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	activationToken := uuid.NewString()
	email := strings.ToLower(in.Email)

	newUser, err := s.users.Create(ctx, user.NewUser{
		Email:           email,
		PasswordHash:    passwordHash,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		ActivationToken: activationToken,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) || errors.Is(err, user.ErrMissingFields) {
			return "", err
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	// Send the activation email in a goroutine with a fresh context so a
	// finished request does not cancel the send
	go func() {
		emailCtx := context.Background()
		if err := s.mailer.SendActivationEmail(emailCtx, newUser.Email, activationToken, newUser.FirstName); err != nil {
			s.logger.Warn("failed to send activation email", "email", newUser.Email, "error", err)
		}
	}()

	return "Activation email has been sent to your email. Please confirm your email.", nil
}

// ValidateUser checks the credentials and returns the matching user with
// the password hash stripped. A wrong email or password is not an error;
// it returns nil so the caller can render an authentication failure.
func (s *Service) ValidateUser(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}

	u.PasswordHash = ""
	return u, nil
}

// Login re-fetches the account by email and issues a session token. The
// account must exist and be activated.
func (s *Service) Login(ctx context.Context, email string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrAccountNotActive
	}

	accessToken, err := s.tokens.CreateToken(u.ID, u.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
	}, nil
}

// Activate flips the account active using its one-time activation token
func (s *Service) Activate(ctx context.Context, token string) error {
	u, err := s.users.GetByActivationToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidActivationToken
		}
		return fmt.Errorf("failed to look up activation token: %w", err)
	}

	if err := s.users.Activate(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	return nil
}

// ForgotPassword stores a fresh reset token on the account and emails the
// reset link. The email send is best-effort, matching registration.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	resetToken := uuid.NewString()
	if err := s.users.SetResetToken(ctx, u.ID, resetToken); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.mailer.SendPasswordResetEmail(emailCtx, u.Email, resetToken, u.FirstName); err != nil {
			s.logger.Warn("failed to send password reset email", "email", u.Email, "error", err)
		}
	}()

	return "Reset password email has been sent! Check your email inbox", nil
}

// ResetPassword sets a new password using a one-time reset token
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	u, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidResetToken
		}
		return "", fmt.Errorf("failed to look up reset token: %w", err)
	}

	if len(newPassword) < 8 {
		return "", ErrPasswordTooShort
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, passwordHash); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	return "Your password has been successfully reset. Go ahead and login to your account", nil
}

// UpdateUser updates the profile name fields and returns the refreshed
// projection without the password
func (s *Service) UpdateUser(ctx context.Context, id int64, firstName, lastName string) (*user.Projection, error) {
	if err := s.users.UpdateNames(ctx, id, firstName, lastName); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return u.Project(), nil
}

// newValidationError flattens ozzo field errors into the field to message
// mapping reported to clients
func newValidationError(fieldErrs validation.Errors) *ValidationError {
	fields := make(map[string]string, len(fieldErrs))
	for field, err := range fieldErrs {
		fields[field] = err.Error()
	}
	return &ValidationError{Fields: fields}
}
