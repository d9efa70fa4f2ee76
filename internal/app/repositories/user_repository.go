package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	if user.Role, err = models.ParseRole(role); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, hashed_password, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role.String(),
	).Scan(&user.CreatedAt)
	if err != nil {
		return translate(err, "creating user", nil, apperrors.ErrEmailAlreadyExists)
	}

	logger.Info().Str("userID", user.ID.String()).Str("role", user.Role.String()).Msg("User created")
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password, first_name, last_name, role, created_at
		FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "retrieving user", apperrors.ErrUserNotFound, nil)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password, first_name, last_name, role, created_at
		FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, translate(err, "retrieving user by email", apperrors.ErrUserNotFound, nil)
	}
	return user, nil
}

// Delete deletes a user; profiles and registrations cascade
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate(err, "deleting user", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
