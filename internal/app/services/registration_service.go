package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/admission"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/metrics"
)

// RegistrationDeps lists the collaborators of RegistrationService.
type RegistrationDeps struct {
	Registrations RegistrationStore
	Offerings     OfferingStore
	Terms         TermStore
	Users         UserStore
	Prerequisites PrerequisiteStore
	// Gate serializes decisions per offering. A nil Gate gets a private one.
	Gate *admission.Gate
}

// RegistrationService drives the registration lifecycle:
// registered and waitlisted rows may be dropped, and only registered rows are graded.
type RegistrationService struct {
	registrationStore RegistrationStore
	offeringStore     OfferingStore
	termStore         TermStore
	userStore         UserStore
	prerequisiteStore PrerequisiteStore
	gate              *admission.Gate
	storeTimeout      time.Duration
	admissionTimeout  time.Duration
	now               func() time.Time
	metrics           *metrics.Metrics
	logger            zerolog.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(deps RegistrationDeps, opts Options) *RegistrationService {
	opts.setDefaults()
	gate := deps.Gate
	if gate == nil {
		gate = admission.NewGate()
	}
	return &RegistrationService{
		registrationStore: deps.Registrations,
		offeringStore:     deps.Offerings,
		termStore:         deps.Terms,
		userStore:         deps.Users,
		prerequisiteStore: deps.Prerequisites,
		gate:              gate,
		storeTimeout:      opts.StoreTimeout,
		admissionTimeout:  opts.AdmissionTimeout,
		now:               opts.Now,
		metrics:           opts.Metrics,
		logger:            opts.Logger.With().Str("service", "registration").Logger(),
	}
}

// Register admits a student to an offering. The registration is stored as
// registered while seats remain and as waitlisted once the offering is full.
func (s *RegistrationService) Register(ctx context.Context, studentID, offeringID uuid.UUID) (*models.Registration, error) {
	return s.admit(ctx, studentID, offeringID, true)
}

// RegisterOrReject behaves like Register but fails with ErrCapacityExceeded
// instead of waitlisting.
func (s *RegistrationService) RegisterOrReject(ctx context.Context, studentID, offeringID uuid.UUID) (*models.Registration, error) {
	return s.admit(ctx, studentID, offeringID, false)
}

func (s *RegistrationService) admit(ctx context.Context, studentID, offeringID uuid.UUID, allowWaitlist bool) (*models.Registration, error) {
	ctx, cancel := helpers.WithDefaultTimeout(ctx, s.admissionTimeout)
	defer cancel()

	log := s.logger.With().Str("studentID", studentID.String()).Str("offeringID", offeringID.String()).Logger()

	if err := s.requireStudent(ctx, studentID); err != nil {
		logFailure(log, err).Msg("Registration refused")
		return nil, err
	}

	offering, err := s.offeringStore.GetByID(ctx, offeringID)
	if err != nil {
		logFailure(log, err).Msg("Registration refused")
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}
	term, err := s.termStore.GetByID(ctx, offering.TermID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving term of offering: %w", err)
	}
	prerequisites, err := s.prerequisiteStore.ListPrerequisites(ctx, offering.CourseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving prerequisites: %w", err)
	}

	var registration *models.Registration
	err = s.gate.Do(ctx, offeringID, func(ctx context.Context) error {
		active, err := s.registrationStore.HasActive(ctx, studentID, offeringID)
		if err != nil {
			return fmt.Errorf("error checking existing registration: %w", err)
		}
		if active {
			return apperrors.ErrAlreadyRegistered
		}

		if err := s.checkEligibility(ctx, studentID, term, prerequisites); err != nil {
			return err
		}

		registration = models.NewRegistration(studentID, offeringID, s.now())
		if err := s.registrationStore.InsertWithinCapacity(ctx, registration, offering.Capacity, allowWaitlist); err != nil {
			return fmt.Errorf("error storing registration: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEligibility):
			s.metrics.ObserveEligibilityRejection()
		case errors.Is(err, apperrors.ErrCapacityExceeded):
			s.metrics.ObserveAdmission("rejected")
		}
		logFailure(log, err).Msg("Registration refused")
		return nil, err
	}

	s.metrics.ObserveAdmission(registration.Status.String())
	log.Info().Str("registrationID", registration.ID.String()).Str("status", registration.Status.String()).Msg("Registration admitted")
	return registration, nil
}

// requireStudent fails unless id names an existing user with the student role.
func (s *RegistrationService) requireStudent(ctx context.Context, id uuid.UUID) error {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrStudentNotFound, id)
		}
		return fmt.Errorf("error retrieving student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return fmt.Errorf("%w: user %s is not a student", apperrors.ErrStudentNotFound, id)
	}
	return nil
}

// checkEligibility requires a registered seat in every prerequisite during a
// term that ended before the target term starts and before now.
func (s *RegistrationService) checkEligibility(ctx context.Context, studentID uuid.UUID, term *models.Term, prerequisites []*models.Course) error {
	if len(prerequisites) == 0 {
		return nil
	}

	cutoff := term.StartDate
	if now := s.now(); now.Before(cutoff) {
		cutoff = now
	}

	completed, err := s.registrationStore.CompletedCourseIDs(ctx, studentID, cutoff)
	if err != nil {
		return fmt.Errorf("error retrieving completed courses: %w", err)
	}
	done := make(map[uuid.UUID]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	var missing []string
	for _, p := range prerequisites {
		if !done[p.ID] {
			missing = append(missing, p.ID.String())
		}
	}
	if len(missing) > 0 {
		return apperrors.NewEligibilityError(missing)
	}
	return nil
}

// Drop marks a registered or waitlisted registration as dropped. Dropping an
// already dropped registration returns it unchanged. Freed seats are not
// refilled automatically; see PromoteWaitlisted.
func (s *RegistrationService) Drop(ctx context.Context, registrationID uuid.UUID) (*models.Registration, error) {
	var dropped *models.Registration
	err := s.withRegistration(ctx, registrationID, func(ctx context.Context, reg *models.Registration) error {
		if reg.Status == models.StatusDropped {
			dropped = reg
			return nil
		}
		if err := s.registrationStore.UpdateStatus(ctx, reg.ID, models.StatusDropped); err != nil {
			return fmt.Errorf("error dropping registration: %w", err)
		}
		reg.Status = models.StatusDropped
		dropped = reg
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Str("registrationID", registrationID.String()).Msg("Failed to drop registration")
		return nil, err
	}

	s.logger.Info().Str("registrationID", registrationID.String()).Msg("Registration dropped")
	return dropped, nil
}

// PromoteWaitlisted moves the longest-waiting registration of the offering to
// registered when a seat is free.
func (s *RegistrationService) PromoteWaitlisted(ctx context.Context, offeringID uuid.UUID) (*models.Registration, error) {
	ctx, cancel := helpers.WithDefaultTimeout(ctx, s.admissionTimeout)
	defer cancel()

	offering, err := s.offeringStore.GetByID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}

	var promoted *models.Registration
	err = s.gate.Do(ctx, offeringID, func(ctx context.Context) error {
		reg, err := s.registrationStore.PromoteOldestWaitlisted(ctx, offeringID, offering.Capacity)
		if err != nil {
			return fmt.Errorf("error promoting waitlisted registration: %w", err)
		}
		promoted = reg
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Str("offeringID", offeringID.String()).Msg("Waitlist promotion failed")
		return nil, err
	}

	s.metrics.ObservePromotion()
	s.logger.Info().
		Str("offeringID", offeringID.String()).
		Str("registrationID", promoted.ID.String()).
		Msg("Waitlisted registration promoted")
	return promoted, nil
}

// AssignGrade sets or overwrites the grade of a registered registration.
func (s *RegistrationService) AssignGrade(ctx context.Context, registrationID uuid.UUID, grade models.Grade) (*models.Registration, error) {
	if _, err := models.ParseGrade(string(grade)); err != nil {
		return nil, err
	}

	var graded *models.Registration
	err := s.withRegistration(ctx, registrationID, func(ctx context.Context, reg *models.Registration) error {
		if reg.Status != models.StatusRegistered {
			return apperrors.NewInvalidStateError(fmt.Sprintf("cannot grade a %s registration", reg.Status))
		}
		if err := s.registrationStore.UpdateGrade(ctx, reg.ID, grade); err != nil {
			return fmt.Errorf("error assigning grade: %w", err)
		}
		reg.Grade = &grade
		graded = reg
		return nil
	})
	if err != nil {
		logFailure(s.logger, err).Str("registrationID", registrationID.String()).Msg("Failed to assign grade")
		return nil, err
	}

	s.logger.Info().Str("registrationID", registrationID.String()).Str("grade", grade.String()).Msg("Grade assigned")
	return graded, nil
}

// AssignGradeFromToken parses token as a letter grade and assigns it.
func (s *RegistrationService) AssignGradeFromToken(ctx context.Context, registrationID uuid.UUID, token string) (*models.Registration, error) {
	grade, err := models.ParseGrade(token)
	if err != nil {
		return nil, err
	}
	return s.AssignGrade(ctx, registrationID, grade)
}

// withRegistration runs fn under the gate of the registration's offering with
// a fresh copy of the registration.
func (s *RegistrationService) withRegistration(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, reg *models.Registration) error) error {
	ctx, cancel := helpers.WithDefaultTimeout(ctx, s.admissionTimeout)
	defer cancel()

	reg, err := s.registrationStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error retrieving registration: %w", err)
	}

	return s.gate.Do(ctx, reg.OfferingID, func(ctx context.Context) error {
		current, err := s.registrationStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("error retrieving registration: %w", err)
		}
		return fn(ctx, current)
	})
}

// CurrentEnrollment returns the number of registered students in the offering.
func (s *RegistrationService) CurrentEnrollment(ctx context.Context, offeringID uuid.UUID) (int, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	count, err := s.registrationStore.CountRegistered(ctx, offeringID)
	if err != nil {
		return 0, fmt.Errorf("error counting enrollment: %w", err)
	}
	return count, nil
}

// Get retrieves a registration by ID
func (s *RegistrationService) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	reg, err := s.registrationStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving registration: %w", err)
	}
	return reg, nil
}

// ListForStudent retrieves every registration of a student, newest first.
func (s *RegistrationService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Registration, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	regs, err := s.registrationStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving registrations: %w", err)
	}
	return regs, nil
}

// ListForOffering retrieves every registration of an offering in admission order.
func (s *RegistrationService) ListForOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.Registration, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	regs, err := s.registrationStore.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving registrations: %w", err)
	}
	return regs, nil
}

// Delete removes a registration row entirely.
func (s *RegistrationService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.registrationStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Str("registrationID", id.String()).Msg("Failed to delete registration")
		return fmt.Errorf("error deleting registration: %w", err)
	}
	return nil
}
