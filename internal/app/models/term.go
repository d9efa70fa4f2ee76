package models

import (
	"fmt"
	"time"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Term is a date-bounded academic period. Terms are immutable once created.
type Term struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
}

// TermName derives the canonical display name from a term's start date:
// terms starting in September or later are winter terms, all others summer terms.
func TermName(start time.Time) string {
	season := "Summer"
	if start.Month() >= time.September {
		season = "Winter"
	}
	return fmt.Sprintf("%s %d", season, start.Year())
}

// NewTerm validates the date range and derives the term name.
func NewTerm(start, end time.Time) (*Term, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: %s is not before %s", apperrors.ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return &Term{
		Name:      TermName(start),
		StartDate: start,
		EndDate:   end,
	}, nil
}
