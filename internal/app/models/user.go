package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Role defines the user role
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole parses a persisted role token.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, s)
}

func (r Role) String() string {
	return string(r)
}

// User is an account that can sign in.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"hashed_password"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Major is a student's declared field of study.
type Major string

const (
	MajorComputerScience Major = "Computer Science"
	MajorEngineering     Major = "Engineering"
	MajorBiology         Major = "Biology"
	MajorMathematics     Major = "Mathematics"
	MajorPhysics         Major = "Physics"
	MajorPsychology      Major = "Psychology"
	MajorSociology       Major = "Sociology"
	MajorPolitics        Major = "Politics"
	MajorLiterature      Major = "Literature"
	MajorBusiness        Major = "Business"
	MajorFineArts        Major = "Fine Arts"
	MajorNursing         Major = "Nursing"
	MajorEducation       Major = "Education"
)

// Majors lists every accepted major.
var Majors = []Major{
	MajorComputerScience, MajorEngineering, MajorBiology, MajorMathematics,
	MajorPhysics, MajorPsychology, MajorSociology, MajorPolitics,
	MajorLiterature, MajorBusiness, MajorFineArts, MajorNursing, MajorEducation,
}

// ParseMajor parses a persisted major token.
func ParseMajor(s string) (Major, error) {
	trimmed := Major(strings.TrimSpace(s))
	for _, m := range Majors {
		if m == trimmed {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidMajor, s)
}

func (m Major) String() string {
	return string(m)
}

// StudentProfile holds the academic record header of a student user.
type StudentProfile struct {
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	StudentNumber  string    `json:"studentNumber" db:"student_number"`
	EnrollmentYear int       `json:"enrollmentYear" db:"enrollment_year"`
	Major          Major     `json:"major" db:"major"`
}
