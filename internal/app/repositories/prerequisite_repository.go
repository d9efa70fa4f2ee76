package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
)

// PrerequisiteRepository stores prerequisite edges between courses
type PrerequisiteRepository struct {
	db *pgxpool.Pool
}

// NewPrerequisiteRepository creates a new prerequisite repository
func NewPrerequisiteRepository(db *pgxpool.Pool) *PrerequisiteRepository {
	return &PrerequisiteRepository{db: db}
}

// Add inserts an edge; an existing edge is left untouched.
func (r *PrerequisiteRepository) Add(ctx context.Context, edge models.PrerequisiteEdge) error {
	sql, args, err := squirrel.Insert("course_prerequisites").
		Columns("course_id", "prerequisite_id").
		Values(edge.CourseID, edge.PrerequisiteID).
		Suffix("ON CONFLICT (course_id, prerequisite_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.ErrSelfPrerequisite
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCourseNotFound
		}
		return translate(err, "adding prerequisite", nil, nil)
	}
	return nil
}

// Remove deletes an edge if present.
func (r *PrerequisiteRepository) Remove(ctx context.Context, edge models.PrerequisiteEdge) error {
	sql, args, err := squirrel.Delete("course_prerequisites").
		Where(squirrel.Eq{"course_id": edge.CourseID, "prerequisite_id": edge.PrerequisiteID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return translate(err, "removing prerequisite", nil, nil)
	}
	return nil
}

// ListPrerequisites returns the direct prerequisites of courseID ordered by course number.
func (r *PrerequisiteRepository) ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]*models.Course, error) {
	sql, args, err := squirrel.Select(courseColumns("c.")...).
		From("course_prerequisites cp").
		Join("courses c ON c.id = cp.prerequisite_id").
		Where(squirrel.Eq{"cp.course_id": courseID}).
		OrderBy("c.course_number").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing prerequisites", nil, nil)
	}
	courses, err := collectCourses(rows)
	if err != nil {
		return nil, translate(err, "listing prerequisites", nil, nil)
	}
	return courses, nil
}
