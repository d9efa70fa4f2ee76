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

// courseColumns is the select list shared by course queries; prefix qualifies joins.
func courseColumns(prefix string) []string {
	cols := []string{"id", "department_id", "course_number", "title", "description", "credits"}
	for i, c := range cols {
		cols[i] = prefix + c
	}
	return cols
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.DepartmentID,
		&course.CourseNumber,
		&course.Title,
		&course.Description,
		&course.Credits,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func collectCourses(rows pgx.Rows) ([]*models.Course, error) {
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a course. A missing department surfaces as a NotFound error.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := squirrel.Insert("courses").
		Columns(courseColumns("")...).
		Values(course.ID, course.DepartmentID, course.CourseNumber, course.Title, course.Description, course.Credits).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err, "creating course", nil, apperrors.ErrDuplicate)
	}
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	sql, args, err := squirrel.Select(courseColumns("")...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, "retrieving course", apperrors.ErrCourseNotFound, nil)
	}
	return course, nil
}

// ListByDepartment retrieves the courses of a department ordered by course number
func (r *CourseRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]*models.Course, error) {
	sql, args, err := squirrel.Select(courseColumns("")...).
		From("courses").
		Where(squirrel.Eq{"department_id": departmentID}).
		OrderBy("course_number").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing courses", nil, nil)
	}
	courses, err := collectCourses(rows)
	if err != nil {
		return nil, translate(err, "listing courses", nil, nil)
	}
	return courses, nil
}

// Delete deletes a course; prerequisite edges and offerings cascade.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return translate(err, "deleting course", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
