package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// StudentProfileRepository handles student profile database operations
type StudentProfileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentProfileRepository creates a new StudentProfileRepository
func NewStudentProfileRepository(db *pgxpool.Pool) *StudentProfileRepository {
	return &StudentProfileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new student profile
func (r *StudentProfileRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	sql, args, err := r.sb.Insert("student_profiles").
		Columns("user_id", "student_number", "enrollment_year", "major").
		Values(profile.UserID, profile.StudentNumber, profile.EnrollmentYear, profile.Major.String()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student profile SQL")
		return err
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "student_profiles_student_number_key"):
			logger.Warn().Str("studentNumber", profile.StudentNumber).Msg("Attempted to create student profile with duplicate student number")
			return apperrors.ErrStudentNumberExists
		case dberrors.IsDuplicateConstraintError(err, "student_profiles_pkey"):
			return apperrors.ErrStudentProfileExists
		case dberrors.IsForeignKeyError(err):
			return apperrors.ErrUserNotFound
		}
		return translate(err, "creating student profile", nil, nil)
	}
	return nil
}

// GetByUserID retrieves a student profile by user ID
func (r *StudentProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	sql, args, err := r.sb.Select("user_id", "student_number", "enrollment_year", "major").
		From("student_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		profile models.StudentProfile
		major   string
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(&profile.UserID, &profile.StudentNumber, &profile.EnrollmentYear, &major)
	if err != nil {
		return nil, translate(err, "retrieving student profile", apperrors.ErrStudentNotFound, nil)
	}
	if profile.Major, err = models.ParseMajor(major); err != nil {
		return nil, err
	}
	return &profile, nil
}
