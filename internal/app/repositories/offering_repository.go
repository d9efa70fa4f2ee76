package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// OfferingRepository handles database operations for course offerings
type OfferingRepository struct {
	db *pgxpool.Pool
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{db: db}
}

func selectOfferings() squirrel.SelectBuilder {
	return squirrel.Select("id", "course_id", "term_id", "instructor_id", "capacity", "location").
		From("course_offerings").
		PlaceholderFormat(squirrel.Dollar)
}

func scanOffering(row pgx.Row) (*models.CourseOffering, error) {
	var offering models.CourseOffering
	err := row.Scan(
		&offering.ID,
		&offering.CourseID,
		&offering.TermID,
		&offering.InstructorID,
		&offering.Capacity,
		&offering.Location,
	)
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

// Create inserts an offering. A missing course or term surfaces as a NotFound error.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	sql, args, err := squirrel.Insert("course_offerings").
		Columns("id", "course_id", "term_id", "instructor_id", "capacity", "location").
		Values(offering.ID, offering.CourseID, offering.TermID, offering.InstructorID, offering.Capacity, offering.Location).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create offering SQL")
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err, "creating offering", nil, apperrors.ErrDuplicate)
}

// GetByID retrieves an offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CourseOffering, error) {
	sql, args, err := selectOfferings().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	offering, err := scanOffering(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, "retrieving offering", apperrors.ErrOfferingNotFound, nil)
	}
	return offering, nil
}

// ListByTerm retrieves the offerings of a term
func (r *OfferingRepository) ListByTerm(ctx context.Context, termID int64) ([]*models.CourseOffering, error) {
	sql, args, err := selectOfferings().Where(squirrel.Eq{"term_id": termID}).OrderBy("location", "id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing offerings", nil, nil)
	}
	defer rows.Close()

	var offerings []*models.CourseOffering
	for rows.Next() {
		offering, err := scanOffering(rows)
		if err != nil {
			return nil, translate(err, "scanning offering", nil, nil)
		}
		offerings = append(offerings, offering)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing offerings", nil, nil)
	}
	return offerings, nil
}

// Delete deletes an offering; meetings and registrations cascade.
func (r *OfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM course_offerings WHERE id = $1`, id)
	if err != nil {
		return translate(err, "deleting offering", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}
	return nil
}
