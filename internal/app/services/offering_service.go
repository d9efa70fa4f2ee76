package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/validation"
)

// CreateOfferingInput carries the fields of a new offering.
type CreateOfferingInput struct {
	CourseID     uuid.UUID `validate:"required"`
	TermID       int64     `validate:"gt=0"`
	InstructorID uuid.UUID `validate:"required"`
	Capacity     int
	Location     string `validate:"max=100"`
}

// OfferingService schedules course offerings and their weekly meetings.
type OfferingService struct {
	offeringStore     OfferingStore
	meetingStore      MeetingStore
	registrationStore RegistrationStore
	storeTimeout      time.Duration
	logger            zerolog.Logger
}

// NewOfferingService creates a new offering service
func NewOfferingService(offeringStore OfferingStore, meetingStore MeetingStore, registrationStore RegistrationStore, opts Options) *OfferingService {
	opts.setDefaults()
	return &OfferingService{
		offeringStore:     offeringStore,
		meetingStore:      meetingStore,
		registrationStore: registrationStore,
		storeTimeout:      opts.StoreTimeout,
		logger:            opts.Logger.With().Str("service", "offering").Logger(),
	}
}

// CreateOffering schedules a course in a term. The course and term must exist.
func (s *OfferingService) CreateOffering(ctx context.Context, input CreateOfferingInput) (*models.CourseOffering, error) {
	input.Location = strings.TrimSpace(input.Location)
	offering, err := models.NewCourseOffering(input.CourseID, input.TermID, input.InstructorID, input.Capacity, input.Location)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.offeringStore.Create(ctx, offering); err != nil {
		logFailure(s.logger, err).Str("courseID", input.CourseID.String()).Int64("termID", input.TermID).Msg("Failed to create offering")
		return nil, fmt.Errorf("error creating offering: %w", err)
	}

	s.logger.Info().
		Str("offeringID", offering.ID.String()).
		Str("courseID", offering.CourseID.String()).
		Int64("termID", offering.TermID).
		Int("capacity", offering.Capacity).
		Msg("Offering created")
	return offering, nil
}

// GetOffering retrieves an offering by ID
func (s *OfferingService) GetOffering(ctx context.Context, id uuid.UUID) (*models.CourseOffering, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	offering, err := s.offeringStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}
	return offering, nil
}

// ListOfferingsByTerm retrieves the offerings scheduled in a term
func (s *OfferingService) ListOfferingsByTerm(ctx context.Context, termID int64) ([]*models.CourseOffering, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	offerings, err := s.offeringStore.ListByTerm(ctx, termID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving offerings: %w", err)
	}
	return offerings, nil
}

// DeleteOffering deletes an offering with its meetings and registrations.
func (s *OfferingService) DeleteOffering(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.offeringStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Str("offeringID", id.String()).Msg("Failed to delete offering")
		return fmt.Errorf("error deleting offering: %w", err)
	}
	s.logger.Info().Str("offeringID", id.String()).Msg("Offering deleted")
	return nil
}

// CurrentEnrollment returns the number of registered students.
func (s *OfferingService) CurrentEnrollment(ctx context.Context, offeringID uuid.UUID) (int, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	count, err := s.registrationStore.CountRegistered(ctx, offeringID)
	if err != nil {
		return 0, fmt.Errorf("error counting enrollment: %w", err)
	}
	return count, nil
}

// AddMeeting attaches a weekly slot to an existing offering. Overlaps are not checked.
func (s *OfferingService) AddMeeting(ctx context.Context, offeringID uuid.UUID, day models.Weekday, start, end models.ClockTime) (*models.MeetingEntry, error) {
	meeting, err := models.NewMeetingEntry(offeringID, day, start, end)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if _, err := s.offeringStore.GetByID(ctx, offeringID); err != nil {
		return nil, fmt.Errorf("error checking offering: %w", err)
	}
	if err := s.meetingStore.Create(ctx, meeting); err != nil {
		logFailure(s.logger, err).Str("offeringID", offeringID.String()).Msg("Failed to add meeting")
		return nil, fmt.Errorf("error adding meeting: %w", err)
	}

	s.logger.Info().
		Str("offeringID", offeringID.String()).
		Str("weekday", day.String()).
		Str("start", start.String()).
		Str("end", end.String()).
		Msg("Meeting added")
	return meeting, nil
}

// AddMeetingFromToken parses a weekday token and HH:MM times before calling AddMeeting.
func (s *OfferingService) AddMeetingFromToken(ctx context.Context, offeringID uuid.UUID, day, start, end string) (*models.MeetingEntry, error) {
	weekday, err := models.ParseWeekday(day)
	if err != nil {
		return nil, err
	}
	startTime, err := models.ParseClockTime(start)
	if err != nil {
		return nil, err
	}
	endTime, err := models.ParseClockTime(end)
	if err != nil {
		return nil, err
	}
	return s.AddMeeting(ctx, offeringID, weekday, startTime, endTime)
}

// MeetingsFor lists an offering's meetings.
func (s *OfferingService) MeetingsFor(ctx context.Context, offeringID uuid.UUID) ([]*models.MeetingEntry, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	meetings, err := s.meetingStore.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving meetings: %w", err)
	}
	return meetings, nil
}

// RemoveMeeting deletes one meeting slot.
func (s *OfferingService) RemoveMeeting(ctx context.Context, id int64) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.meetingStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Int64("meetingID", id).Msg("Failed to remove meeting")
		return fmt.Errorf("error removing meeting: %w", err)
	}
	return nil
}
