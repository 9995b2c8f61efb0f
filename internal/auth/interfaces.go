package auth

import (
	"context"
	"time"

	"github.com/mynews/mynews-api/internal/user"
)

// TokenService defines the interface for session token creation and validation
type TokenService interface {
	CreateToken(userID int64, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// EmailSender defines the interface for outbound transactional email
type EmailSender interface {
	SendActivationEmail(ctx context.Context, toEmail, token, firstName string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token, firstName string) error
}

// UserStore is the credential-store capability set the auth service needs
type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByActivationToken(ctx context.Context, token string) (*user.User, error)
	GetByResetToken(ctx context.Context, token string) (*user.User, error)
	Activate(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, token string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateNames(ctx context.Context, id int64, firstName, lastName string) error
}
