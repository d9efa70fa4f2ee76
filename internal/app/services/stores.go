package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/auth"
)

// Store contracts consumed by the services. Implementations report missing
// rows with an apperrors NotFound error and unique collisions with an
// apperrors Duplicate error; anything else is returned wrapped.

// DepartmentStore persists departments.
type DepartmentStore interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetByCode(ctx context.Context, code string) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Delete(ctx context.Context, id int64) error
}

// CourseStore persists courses.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*models.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PrerequisiteStore persists prerequisite edges.
type PrerequisiteStore interface {
	// Add is idempotent: inserting an existing edge succeeds without change.
	Add(ctx context.Context, edge models.PrerequisiteEdge) error
	// Remove succeeds when the edge does not exist.
	Remove(ctx context.Context, edge models.PrerequisiteEdge) error
	// ListPrerequisites returns the direct prerequisites of courseID.
	ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]*models.Course, error)
}

// TermStore persists terms. Terms have no update path.
type TermStore interface {
	Create(ctx context.Context, term *models.Term) error
	GetByID(ctx context.Context, id int64) (*models.Term, error)
	List(ctx context.Context) ([]*models.Term, error)
}

// OfferingStore persists course offerings.
type OfferingStore interface {
	Create(ctx context.Context, offering *models.CourseOffering) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CourseOffering, error)
	ListByTerm(ctx context.Context, termID int64) ([]*models.CourseOffering, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MeetingStore persists weekly meeting slots.
type MeetingStore interface {
	Create(ctx context.Context, meeting *models.MeetingEntry) error
	ListByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.MeetingEntry, error)
	Delete(ctx context.Context, id int64) error
}

// RegistrationStore persists registrations and owns the capacity decision.
type RegistrationStore interface {
	// InsertWithinCapacity stores reg as registered when fewer than capacity
	// registered rows exist for its offering. Otherwise it stores reg as
	// waitlisted, or returns apperrors.ErrCapacityExceeded when allowWaitlist
	// is false. reg.Status is set to the stored status.
	InsertWithinCapacity(ctx context.Context, reg *models.Registration, capacity int, allowWaitlist bool) error
	// PromoteOldestWaitlisted moves the oldest waitlisted registration of the
	// offering to registered if a seat is free.
	PromoteOldestWaitlisted(ctx context.Context, offeringID uuid.UUID, capacity int) (*models.Registration, error)
	HasActive(ctx context.Context, studentID, offeringID uuid.UUID) (bool, error)
	CountRegistered(ctx context.Context, offeringID uuid.UUID) (int, error)
	// CompletedCourseIDs lists courses the student held a registered seat in
	// during terms that ended strictly before the given instant.
	CompletedCourseIDs(ctx context.Context, studentID uuid.UUID, before time.Time) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Registration, error)
	ListByOffering(ctx context.Context, offeringID uuid.UUID) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus) error
	UpdateGrade(ctx context.Context, id uuid.UUID, grade models.Grade) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentProfileStore persists student profiles.
type StudentProfileStore interface {
	Create(ctx context.Context, profile *models.StudentProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
}

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) bool
}

// TokenIssuer signs and validates session tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email, role string) (string, time.Time, error)
	Validate(token string) (*auth.Claims, error)
}

// Stores bundles every store the services need.
type Stores struct {
	Departments   DepartmentStore
	Courses       CourseStore
	Prerequisites PrerequisiteStore
	Terms         TermStore
	Offerings     OfferingStore
	Meetings      MeetingStore
	Registrations RegistrationStore
	Users         UserStore
	Students      StudentProfileStore
}
