package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
)

// TermService manages the academic calendar.
type TermService struct {
	termStore    TermStore
	storeTimeout time.Duration
	logger       zerolog.Logger
}

// NewTermService creates a new term service
func NewTermService(termStore TermStore, opts Options) *TermService {
	opts.setDefaults()
	return &TermService{
		termStore:    termStore,
		storeTimeout: opts.StoreTimeout,
		logger:       opts.Logger.With().Str("service", "term").Logger(),
	}
}

// CreateTerm stores a term spanning [start, end]. The name is derived from start.
func (s *TermService) CreateTerm(ctx context.Context, start, end time.Time) (*models.Term, error) {
	term, err := models.NewTerm(start, end)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.termStore.Create(ctx, term); err != nil {
		logFailure(s.logger, err).Str("name", term.Name).Msg("Failed to create term")
		return nil, fmt.Errorf("error creating term: %w", err)
	}

	s.logger.Info().Int64("termID", term.ID).Str("name", term.Name).Msg("Term created")
	return term, nil
}

// GetTerm retrieves a term by ID
func (s *TermService) GetTerm(ctx context.Context, id int64) (*models.Term, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	term, err := s.termStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving term: %w", err)
	}
	return term, nil
}

// ListTerms retrieves all terms ordered by start date
func (s *TermService) ListTerms(ctx context.Context) ([]*models.Term, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	terms, err := s.termStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving terms: %w", err)
	}
	return terms, nil
}
