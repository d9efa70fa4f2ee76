package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// RegistrationStatus is the state of a student's registration in one offering.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusDropped    RegistrationStatus = "dropped"
	StatusWaitlisted RegistrationStatus = "waitlisted"
)

// ParseRegistrationStatus parses a persisted status token.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	switch RegistrationStatus(strings.TrimSpace(s)) {
	case StatusRegistered:
		return StatusRegistered, nil
	case StatusDropped:
		return StatusDropped, nil
	case StatusWaitlisted:
		return StatusWaitlisted, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, s)
}

func (s RegistrationStatus) String() string {
	return string(s)
}

// IsActive reports whether the status holds or awaits a seat.
func (s RegistrationStatus) IsActive() bool {
	return s == StatusRegistered || s == StatusWaitlisted
}

// Grade is a final letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// ParseGrade parses a persisted grade token.
func ParseGrade(s string) (Grade, error) {
	switch Grade(strings.TrimSpace(s)) {
	case GradeA:
		return GradeA, nil
	case GradeB:
		return GradeB, nil
	case GradeC:
		return GradeC, nil
	case GradeD:
		return GradeD, nil
	case GradeF:
		return GradeF, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidGrade, s)
}

func (g Grade) String() string {
	return string(g)
}

// Registration is one student's relationship to one offering.
type Registration struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	StudentID    uuid.UUID          `json:"studentId" db:"student_id"`
	OfferingID   uuid.UUID          `json:"offeringId" db:"offering_id"`
	RegisteredAt time.Time          `json:"registeredAt" db:"registered_at"`
	Status       RegistrationStatus `json:"status" db:"status"`
	Grade        *Grade             `json:"grade,omitempty" db:"grade"` // Nullable
}

// NewRegistration prepares a registration attempt; the store decides the final status.
func NewRegistration(studentID, offeringID uuid.UUID, at time.Time) *Registration {
	return &Registration{
		ID:           uuid.New(),
		StudentID:    studentID,
		OfferingID:   offeringID,
		RegisteredAt: at,
	}
}
