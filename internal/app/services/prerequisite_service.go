package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// EdgeRule vets a prerequisite edge before it is stored.
type EdgeRule interface {
	Check(ctx context.Context, edge models.PrerequisiteEdge) error
}

// EdgeRuleFunc adapts a function to EdgeRule.
type EdgeRuleFunc func(ctx context.Context, edge models.PrerequisiteEdge) error

// Check calls f.
func (f EdgeRuleFunc) Check(ctx context.Context, edge models.PrerequisiteEdge) error {
	return f(ctx, edge)
}

// NoSelfLoop rejects an edge from a course to itself.
func NoSelfLoop() EdgeRule {
	return EdgeRuleFunc(func(_ context.Context, edge models.PrerequisiteEdge) error {
		if edge.IsSelfLoop() {
			return fmt.Errorf("%w: %s", apperrors.ErrSelfPrerequisite, edge.CourseID)
		}
		return nil
	})
}

// RejectCycles rejects an edge when the course is already reachable from the
// prerequisite, which would close a cycle.
func RejectCycles(store PrerequisiteStore) EdgeRule {
	return EdgeRuleFunc(func(ctx context.Context, edge models.PrerequisiteEdge) error {
		visited := map[uuid.UUID]bool{edge.PrerequisiteID: true}
		queue := []uuid.UUID{edge.PrerequisiteID}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			prereqs, err := store.ListPrerequisites(ctx, current)
			if err != nil {
				return fmt.Errorf("error walking prerequisites of %s: %w", current, err)
			}
			for _, p := range prereqs {
				if p.ID == edge.CourseID {
					return fmt.Errorf("%w: %s already depends on %s", apperrors.ErrPrerequisiteLoop, edge.PrerequisiteID, edge.CourseID)
				}
				if !visited[p.ID] {
					visited[p.ID] = true
					queue = append(queue, p.ID)
				}
			}
		}
		return nil
	})
}

// DefaultEdgeRules returns the rules every insert runs.
func DefaultEdgeRules() []EdgeRule {
	return []EdgeRule{NoSelfLoop()}
}

// PrerequisiteService maintains the prerequisite graph.
type PrerequisiteService struct {
	prerequisiteStore PrerequisiteStore
	courseStore       CourseStore
	rules             []EdgeRule
	storeTimeout      time.Duration
	logger            zerolog.Logger
}

// NewPrerequisiteService creates a prerequisite service. A nil rules slice means DefaultEdgeRules.
func NewPrerequisiteService(prerequisiteStore PrerequisiteStore, courseStore CourseStore, rules []EdgeRule, opts Options) *PrerequisiteService {
	opts.setDefaults()
	if rules == nil {
		rules = DefaultEdgeRules()
	}
	return &PrerequisiteService{
		prerequisiteStore: prerequisiteStore,
		courseStore:       courseStore,
		rules:             rules,
		storeTimeout:      opts.StoreTimeout,
		logger:            opts.Logger.With().Str("service", "prerequisite").Logger(),
	}
}

// AddPrerequisite records that courseID requires prerequisiteID. Adding an
// existing edge is a no-op.
func (s *PrerequisiteService) AddPrerequisite(ctx context.Context, courseID, prerequisiteID uuid.UUID) error {
	edge := models.PrerequisiteEdge{CourseID: courseID, PrerequisiteID: prerequisiteID}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	for _, rule := range s.rules {
		if err := rule.Check(ctx, edge); err != nil {
			logFailure(s.logger, err).Str("courseID", courseID.String()).Str("prerequisiteID", prerequisiteID.String()).Msg("Prerequisite rejected")
			return err
		}
	}

	for _, id := range []uuid.UUID{courseID, prerequisiteID} {
		if _, err := s.courseStore.GetByID(ctx, id); err != nil {
			return fmt.Errorf("error checking course %s: %w", id, err)
		}
	}

	if err := s.prerequisiteStore.Add(ctx, edge); err != nil {
		logFailure(s.logger, err).Str("courseID", courseID.String()).Msg("Failed to add prerequisite")
		return fmt.Errorf("error adding prerequisite: %w", err)
	}

	s.logger.Info().Str("courseID", courseID.String()).Str("prerequisiteID", prerequisiteID.String()).Msg("Prerequisite added")
	return nil
}

// RemovePrerequisite deletes the edge if present.
func (s *PrerequisiteService) RemovePrerequisite(ctx context.Context, courseID, prerequisiteID uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	edge := models.PrerequisiteEdge{CourseID: courseID, PrerequisiteID: prerequisiteID}
	if err := s.prerequisiteStore.Remove(ctx, edge); err != nil {
		logFailure(s.logger, err).Str("courseID", courseID.String()).Msg("Failed to remove prerequisite")
		return fmt.Errorf("error removing prerequisite: %w", err)
	}
	return nil
}

// PrerequisitesOf returns the direct prerequisites of courseID.
func (s *PrerequisiteService) PrerequisitesOf(ctx context.Context, courseID uuid.UUID) ([]*models.Course, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()

	courses, err := s.prerequisiteStore.ListPrerequisites(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving prerequisites: %w", err)
	}
	return courses, nil
}
