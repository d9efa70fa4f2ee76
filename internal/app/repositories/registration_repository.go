package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/db"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
)

const activeRegistrationConstraint = "registrations_active_key"

// RegistrationRepository handles database operations for registrations
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func selectRegistrations() squirrel.SelectBuilder {
	return squirrel.Select("id", "student_id", "offering_id", "registered_at", "status", "grade").
		From("registrations").
		PlaceholderFormat(squirrel.Dollar)
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var (
		reg    models.Registration
		status string
		grade  *string
	)
	if err := row.Scan(&reg.ID, &reg.StudentID, &reg.OfferingID, &reg.RegisteredAt, &status, &grade); err != nil {
		return nil, err
	}

	var err error
	if reg.Status, err = models.ParseRegistrationStatus(status); err != nil {
		return nil, err
	}
	if grade != nil {
		g, err := models.ParseGrade(*grade)
		if err != nil {
			return nil, err
		}
		reg.Grade = &g
	}
	return &reg, nil
}

// lockOffering takes a row lock on the offering so admissions to it queue
// behind this transaction.
func lockOffering(ctx context.Context, tx pgx.Tx, offeringID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM course_offerings WHERE id = $1 FOR UPDATE`, offeringID).Scan(&id)
	return translate(err, "locking offering", apperrors.ErrOfferingNotFound, nil)
}

func countRegistered(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, offeringID uuid.UUID) (int, error) {
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE offering_id = $1 AND status = $2`,
		offeringID, models.StatusRegistered.String(),
	).Scan(&count)
	if err != nil {
		return 0, translate(err, "counting registrations", nil, nil)
	}
	return count, nil
}

// InsertWithinCapacity decides the status and inserts reg in one transaction
// holding the offering's row lock.
func (r *RegistrationRepository) InsertWithinCapacity(ctx context.Context, reg *models.Registration, capacity int, allowWaitlist bool) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockOffering(ctx, tx, reg.OfferingID); err != nil {
			return err
		}

		count, err := countRegistered(ctx, tx, reg.OfferingID)
		if err != nil {
			return err
		}

		status := models.StatusRegistered
		if count >= capacity {
			if !allowWaitlist {
				return apperrors.ErrCapacityExceeded
			}
			status = models.StatusWaitlisted
		}

		sql, args, err := squirrel.Insert("registrations").
			Columns("id", "student_id", "offering_id", "registered_at", "status").
			Values(reg.ID, reg.StudentID, reg.OfferingID, reg.RegisteredAt, status.String()).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, activeRegistrationConstraint) {
				return apperrors.ErrAlreadyRegistered
			}
			return translate(err, "inserting registration", nil, apperrors.ErrDuplicate)
		}

		reg.Status = status
		return nil
	})
}

// PromoteOldestWaitlisted registers the earliest waitlisted row (ties broken
// by id) when the offering has a free seat.
func (r *RegistrationRepository) PromoteOldestWaitlisted(ctx context.Context, offeringID uuid.UUID, capacity int) (*models.Registration, error) {
	var promoted *models.Registration
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockOffering(ctx, tx, offeringID); err != nil {
			return err
		}

		count, err := countRegistered(ctx, tx, offeringID)
		if err != nil {
			return err
		}
		if count >= capacity {
			return apperrors.ErrCapacityExceeded
		}

		sql, args, err := selectRegistrations().
			Where(squirrel.Eq{"offering_id": offeringID, "status": models.StatusWaitlisted.String()}).
			OrderBy("registered_at", "id").
			Limit(1).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return err
		}
		reg, err := scanRegistration(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return translate(err, "selecting waitlisted registration", apperrors.ErrWaitlistEmpty, nil)
		}

		if _, err := tx.Exec(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`,
			models.StatusRegistered.String(), reg.ID); err != nil {
			return translate(err, "promoting registration", nil, nil)
		}
		reg.Status = models.StatusRegistered
		promoted = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// HasActive reports whether the student holds a registered or waitlisted row in the offering.
func (r *RegistrationRepository) HasActive(ctx context.Context, studentID, offeringID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM registrations
		WHERE student_id = $1 AND offering_id = $2 AND status IN ($3, $4))`,
		studentID, offeringID, models.StatusRegistered.String(), models.StatusWaitlisted.String(),
	).Scan(&exists)
	if err != nil {
		return false, translate(err, "checking active registration", nil, nil)
	}
	return exists, nil
}

// CountRegistered counts registered rows of an offering
func (r *RegistrationRepository) CountRegistered(ctx context.Context, offeringID uuid.UUID) (int, error) {
	return countRegistered(ctx, r.db, offeringID)
}

// CompletedCourseIDs lists courses the student held a registered seat in during
// terms ending strictly before the given instant.
func (r *RegistrationRepository) CompletedCourseIDs(ctx context.Context, studentID uuid.UUID, before time.Time) ([]uuid.UUID, error) {
	sql, args, err := squirrel.Select("DISTINCT o.course_id").
		From("registrations r").
		Join("course_offerings o ON o.id = r.offering_id").
		Join("terms t ON t.id = o.term_id").
		Where(squirrel.Eq{"r.student_id": studentID, "r.status": models.StatusRegistered.String()}).
		Where(squirrel.Lt{"t.end_date": before}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing completed courses", nil, nil)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, translate(err, "listing completed courses", nil, nil)
	}
	return ids, nil
}

// GetByID retrieves a registration by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	sql, args, err := selectRegistrations().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	reg, err := scanRegistration(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, "retrieving registration", apperrors.ErrRegistrationNotFound, nil)
	}
	return reg, nil
}

func (r *RegistrationRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Registration, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "listing registrations", nil, nil)
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, translate(err, "scanning registration", nil, nil)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing registrations", nil, nil)
	}
	return regs, nil
}

// ListByStudent retrieves a student's registrations, newest first
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Registration, error) {
	return r.list(ctx, selectRegistrations().
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("registered_at DESC", "id"))
}

// ListByOffering retrieves an offering's registrations in admission order
func (r *RegistrationRepository) ListByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.Registration, error) {
	return r.list(ctx, selectRegistrations().
		Where(squirrel.Eq{"offering_id": offeringID}).
		OrderBy("registered_at", "id"))
}

// UpdateStatus sets the status of a registration
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`, status.String(), id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, activeRegistrationConstraint) {
			return apperrors.ErrAlreadyRegistered
		}
		return translate(err, "updating registration status", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}
	return nil
}

// UpdateGrade sets or overwrites the grade of a registration
func (r *RegistrationRepository) UpdateGrade(ctx context.Context, id uuid.UUID, grade models.Grade) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE registrations SET grade = $1 WHERE id = $2`, grade.String(), id)
	if err != nil {
		return translate(err, "updating grade", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}
	return nil
}

// Delete deletes a registration by ID
func (r *RegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return translate(err, "deleting registration", nil, nil)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}
	return nil
}
