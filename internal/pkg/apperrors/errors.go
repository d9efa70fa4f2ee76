package apperrors

import (
	"errors"
	"fmt"
)

// Taxonomy errors. Every error returned by the domain layer wraps exactly one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicate        = errors.New("resource already exists")
	ErrEligibility      = errors.New("prerequisites not satisfied")
	ErrCapacityExceeded = errors.New("offering is at capacity")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrAuthentication   = errors.New("invalid credentials")
)

// Validation errors
var (
	ErrInvalidDateRange = fmt.Errorf("%w: start date must be before end date", ErrValidation)
	ErrInvalidCapacity  = fmt.Errorf("%w: capacity must not be negative", ErrValidation)
	ErrInvalidCredits   = fmt.Errorf("%w: credits must not be negative", ErrValidation)
	ErrInvalidWeekday   = fmt.Errorf("%w: invalid weekday", ErrValidation)
	ErrInvalidTimeRange = fmt.Errorf("%w: start time must be before end time", ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid registration status", ErrValidation)
	ErrInvalidGrade     = fmt.Errorf("%w: invalid grade", ErrValidation)
	ErrInvalidMajor     = fmt.Errorf("%w: invalid major", ErrValidation)
	ErrSelfPrerequisite = fmt.Errorf("%w: a course cannot be its own prerequisite", ErrValidation)
	ErrPrerequisiteLoop = fmt.Errorf("%w: prerequisite would create a cycle", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrInvalidPassword  = fmt.Errorf("%w: invalid password", ErrValidation)
)

// Not found errors
var (
	ErrDepartmentNotFound   = fmt.Errorf("%w: department", ErrNotFound)
	ErrCourseNotFound       = fmt.Errorf("%w: course", ErrNotFound)
	ErrTermNotFound         = fmt.Errorf("%w: term", ErrNotFound)
	ErrOfferingNotFound     = fmt.Errorf("%w: course offering", ErrNotFound)
	ErrMeetingNotFound      = fmt.Errorf("%w: meeting", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("%w: registration", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("%w: student", ErrNotFound)
	ErrWaitlistEmpty        = fmt.Errorf("%w: no waitlisted registration", ErrNotFound)
)

// Duplicate errors
var (
	ErrDuplicateCode        = fmt.Errorf("%w: department code", ErrDuplicate)
	ErrEmailAlreadyExists   = fmt.Errorf("%w: email", ErrDuplicate)
	ErrStudentNumberExists  = fmt.Errorf("%w: student number", ErrDuplicate)
	ErrAlreadyRegistered    = fmt.Errorf("%w: student already holds an active registration for this offering", ErrDuplicate)
	ErrStudentProfileExists = fmt.Errorf("%w: student profile", ErrDuplicate)
)

// Invalid state errors
var (
	ErrDepartmentHasCourses = fmt.Errorf("%w: department still has courses", ErrInvalidState)
)

// Session errors
var (
	ErrTokenInvalid = fmt.Errorf("%w: invalid session token", ErrAuthentication)
	ErrTokenExpired = fmt.Errorf("%w: session token expired", ErrAuthentication)
)

// NewValidationError creates a new custom error for validation failures with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidation,
		Message: message,
	}
}

// NewEligibilityError reports the prerequisite courses a student is missing.
func NewEligibilityError(missing []string) error {
	return NewCustomError(ErrEligibility, fmt.Sprintf("missing %d prerequisite course(s)", len(missing))).
		WithCode("ELIGIBILITY").
		WithDetails(map[string]interface{}{"missingPrerequisites": missing})
}

// NewInvalidStateError creates a new custom error for an operation not allowed in the current state
func NewInvalidStateError(message string) error {
	return &CustomError{
		Err:     ErrInvalidState,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" && e.Err != nil {
		return e.Err.Error() + ": " + e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// DetailsOf returns the details attached to the first CustomError in err's chain.
func DetailsOf(err error) map[string]interface{} {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}
