package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Course represents a course offered by a department.
type Course struct {
	ID           uuid.UUID `json:"id" db:"id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	CourseNumber string    `json:"courseNumber" db:"course_number"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"` // Nullable
	Credits      int       `json:"credits" db:"credits"`
}

// String renders the course the way the catalog listing prints it.
func (c *Course) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nUUID: %s\nDepartment: %d\nTitle: %s\n", c.CourseNumber, c.ID, c.DepartmentID, c.Title)
	if c.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", *c.Description)
	} else {
		b.WriteString("Description: None\n")
	}
	fmt.Fprintf(&b, "Credits: %d", c.Credits)
	return b.String()
}

// PrerequisiteEdge states that CourseID requires PrerequisiteID.
type PrerequisiteEdge struct {
	CourseID       uuid.UUID `json:"courseId" db:"course_id"`
	PrerequisiteID uuid.UUID `json:"prerequisiteId" db:"prerequisite_id"`
}

// IsSelfLoop reports whether the edge points a course at itself.
func (e PrerequisiteEdge) IsSelfLoop() bool {
	return e.CourseID == e.PrerequisiteID
}
