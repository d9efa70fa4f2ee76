package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
	}
}

func selectDepartments() squirrel.SelectBuilder {
	return squirrel.Select("id", "code", "name").
		From("departments").
		PlaceholderFormat(squirrel.Dollar)
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var department models.Department
	if err := row.Scan(&department.ID, &department.Code, &department.Name); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := squirrel.Insert("departments").
		Columns("code", "name").
		Values(department.Code, department.Name).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create department SQL")
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&department.ID)
	return translate(err, "creating department", nil, apperrors.ErrDuplicateCode)
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByCode retrieves a department by its unique code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code})
}

func (r *DepartmentRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Department, error) {
	sql, args, err := selectDepartments().Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	department, err := scanDepartment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, "retrieving department", apperrors.ErrDepartmentNotFound, nil)
	}
	return department, nil
}

// List retrieves all departments ordered by code
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	sql, args, err := selectDepartments().OrderBy("code").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing departments", nil, nil)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, translate(err, "scanning department", nil, nil)
		}
		departments = append(departments, department)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing departments", nil, nil)
	}

	return departments, nil
}

// Delete deletes a department by ID
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return translateDelete(err, "deleting department", apperrors.ErrDepartmentHasCourses)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}
