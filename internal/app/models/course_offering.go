package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// CourseOffering binds a course to a term, an instructor, a seat capacity and a location.
type CourseOffering struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CourseID     uuid.UUID `json:"courseId" db:"course_id"`
	TermID       int64     `json:"termId" db:"term_id"`
	InstructorID uuid.UUID `json:"instructorId" db:"instructor_id"`
	Capacity     int       `json:"capacity" db:"capacity"`
	Location     string    `json:"location" db:"location"`
}

// NewCourseOffering allocates an identifier after checking the capacity.
func NewCourseOffering(courseID uuid.UUID, termID int64, instructorID uuid.UUID, capacity int, location string) (*CourseOffering, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidCapacity, capacity)
	}
	return &CourseOffering{
		ID:           uuid.New(),
		CourseID:     courseID,
		TermID:       termID,
		InstructorID: instructorID,
		Capacity:     capacity,
		Location:     location,
	}, nil
}
