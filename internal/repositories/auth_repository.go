package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gameclub_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	SetPassword(ctx context.Context, executor SQLExecutor, username, hashedPassword string) error
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser inserts a new active user. Email, FullName and RoleID are optional.
func (r *authRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()

	var roleID sql.NullInt64
	if user.RoleID != nil {
		roleID = sql.NullInt64{Int64: *user.RoleID, Valid: true}
	}

	var userID int64
	err := executor.QueryRowContext(ctx, query,
		user.Username,
		hashedPassword,
		user.Email,
		user.FullName,
		roleID,
		true,
		currentTime,
		currentTime,
	).Scan(&userID)
	if err != nil {
		if pqErr, ok := isUniqueViolation(err); ok {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return userID, nil
}

const userSelect = `
		SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.is_active, u.created_at, u.updated_at,
		       COALESCE(ro.name, '') as role_name
		FROM users u
		LEFT JOIN roles ro ON u.role_id = ro.id`

func scanUser(s scanner) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	var roleName sql.NullString
	var roleID sql.NullInt64

	if err := s.Scan(
		&user.ID, &user.Username, &hashedPassword, &user.Email, &user.FullName,
		&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&roleName,
	); err != nil {
		return nil, "", err
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		if roleName.Valid {
			user.Role = &models.Role{ID: *user.RoleID, Name: roleName.String}
		}
	}
	return user, hashedPassword, nil
}

// FindUserByUsername retrieves a user and their password hash.
func (r *authRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	user, hashedPassword, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, hashedPassword, nil
}

// FindUserByID retrieves a user profile. The password hash is never populated.
func (r *authRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	user, _, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *authRepository) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE LOWER(name) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding role %s: %v", ErrDatabaseError, name, err)
	}
	return role, nil
}

// SetPassword replaces the hash of an existing user and reactivates the account.
func (r *authRepository) SetPassword(ctx context.Context, executor SQLExecutor, username, hashedPassword string) error {
	query := `UPDATE users SET password_hash = $1, is_active = TRUE, updated_at = $2 WHERE username = $3`
	result, err := executor.ExecContext(ctx, query, hashedPassword, time.Now(), username)
	if err != nil {
		return fmt.Errorf("%w: setting password for %s: %v", ErrDatabaseError, username, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for password update: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
