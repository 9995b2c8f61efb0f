package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/mynews/mynews-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrMissingFields  = errors.New("required field missing")
)

// Repository handles user persistence over bun
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// NewUser carries the fields needed to create an account
type NewUser struct {
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	ActivationToken string
}

// Create inserts a new inactive user with a fresh activation token
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	now := time.Now()
	dbUser := &database.User{
		Email:           nu.Email,
		PasswordHash:    nu.PasswordHash,
		FirstName:       nu.FirstName,
		LastName:        nu.LastName,
		IsActive:        false,
		ActivationToken: &nu.ActivationToken,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateEmail
		}
		if isNotNullErr(err) {
			return nil, ErrMissingFields
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email. Callers are expected to pass
// a lower-cased email; the column stores lower-case only.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByActivationToken retrieves the user holding the given activation token
func (r *Repository) GetByActivationToken(ctx context.Context, token string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("activation_token = ?", token).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by activation token: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByResetToken retrieves the user holding the given reset token
func (r *Repository) GetByResetToken(ctx context.Context, token string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("reset_token = ?", token).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Activate flips the account active and clears the activation token so the
// token is single-use
func (r *Repository) Activate(ctx context.Context, id int64) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", true).
		Set("activation_token = ?", nil).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	return checkAffected(result)
}

// SetResetToken stores a fresh password reset token on the user
func (r *Repository) SetResetToken(ctx context.Context, id int64, token string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("reset_token = ?", token).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return checkAffected(result)
}

// UpdatePassword stores a new password hash and clears the reset token so
// the token is single-use
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token = ?", nil).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return checkAffected(result)
}

// UpdateNames updates the two profile name fields
func (r *Repository) UpdateNames(ctx context.Context, id int64, firstName, lastName string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("first_name = ?", firstName).
		Set("last_name = ?", lastName).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update user names: %w", err)
	}

	return checkAffected(result)
}

// List returns all users ordered by id
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	var dbUsers []*database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbu := range dbUsers {
		users = append(users, mapDBUserToModel(dbu))
	}
	return users, nil
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateErr matches unique-constraint violations from Postgres and
// SQLite without depending on driver error types
func isDuplicateErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint")
}

func isNotNullErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not-null constraint") ||
		strings.Contains(msg, "not null constraint")
}

// mapDBUserToModel converts the database row to the domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:              dbu.ID,
		Email:           dbu.Email,
		PasswordHash:    dbu.PasswordHash,
		FirstName:       dbu.FirstName,
		LastName:        dbu.LastName,
		IsActive:        dbu.IsActive,
		ActivationToken: dbu.ActivationToken,
		ResetToken:      dbu.ResetToken,
		CreatedAt:       dbu.CreatedAt,
		UpdatedAt:       dbu.UpdatedAt,
	}
}
