package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// TermRepository handles database operations for terms
type TermRepository struct {
	db *pgxpool.Pool
}

// NewTermRepository creates a new term repository
func NewTermRepository(db *pgxpool.Pool) *TermRepository {
	return &TermRepository{db: db}
}

func scanTerm(row pgx.Row) (*models.Term, error) {
	var term models.Term
	if err := row.Scan(&term.ID, &term.Name, &term.StartDate, &term.EndDate); err != nil {
		return nil, err
	}
	return &term, nil
}

// Create inserts a term
func (r *TermRepository) Create(ctx context.Context, term *models.Term) error {
	query := `
		INSERT INTO terms (name, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, term.Name, term.StartDate, term.EndDate).Scan(&term.ID)
	return translate(err, "creating term", nil, nil)
}

// GetByID retrieves a term by ID
func (r *TermRepository) GetByID(ctx context.Context, id int64) (*models.Term, error) {
	query := `
		SELECT id, name, start_date, end_date
		FROM terms
		WHERE id = $1
	`

	term, err := scanTerm(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "retrieving term", apperrors.ErrTermNotFound, nil)
	}
	return term, nil
}

// List retrieves all terms ordered by start date
func (r *TermRepository) List(ctx context.Context) ([]*models.Term, error) {
	query := `
		SELECT id, name, start_date, end_date
		FROM terms
		ORDER BY start_date
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "listing terms", nil, nil)
	}
	defer rows.Close()

	var terms []*models.Term
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, translate(err, "scanning term", nil, nil)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err, "listing terms", nil, nil)
	}
	return terms, nil
}
