package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/validation"
)

// CreateCourseInput carries the fields of a new course.
type CreateCourseInput struct {
	DepartmentID int64   `validate:"gt=0"`
	CourseNumber string  `validate:"notblank,max=20"`
	Title        string  `validate:"notblank,max=200"`
	Description  *string `validate:"omitempty,max=2000"`
	Credits      int     `validate:"gte=0"`
}

type createDepartmentInput struct {
	Code string `validate:"required,deptcode,max=10"`
	Name string `validate:"notblank,max=100"`
}

// CatalogService manages departments and courses.
type CatalogService struct {
	departmentStore DepartmentStore
	courseStore     CourseStore
	storeTimeout    time.Duration
	logger          zerolog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(departmentStore DepartmentStore, courseStore CourseStore, opts Options) *CatalogService {
	opts.setDefaults()
	return &CatalogService{
		departmentStore: departmentStore,
		courseStore:     courseStore,
		storeTimeout:    opts.StoreTimeout,
		logger:          opts.Logger.With().Str("service", "catalog").Logger(),
	}
}

// CreateDepartment creates a department. Codes are uppercase alphanumeric and unique.
func (s *CatalogService) CreateDepartment(ctx context.Context, code, name string) (*models.Department, error) {
	input := createDepartmentInput{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	department := &models.Department{Code: input.Code, Name: input.Name}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.departmentStore.Create(ctx, department); err != nil {
		logFailure(s.logger, err).Str("code", input.Code).Msg("Failed to create department")
		return nil, fmt.Errorf("error creating department: %w", err)
	}

	s.logger.Info().Int64("departmentID", department.ID).Str("code", department.Code).Msg("Department created")
	return department, nil
}

// GetDepartment retrieves a department by ID
func (s *CatalogService) GetDepartment(ctx context.Context, id int64) (*models.Department, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("department ID must be positive")
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	department, err := s.departmentStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return department, nil
}

// GetDepartmentByCode retrieves a department by its code
func (s *CatalogService) GetDepartmentByCode(ctx context.Context, code string) (*models.Department, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NewValidationError("department code is required")
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	department, err := s.departmentStore.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("error retrieving department %s: %w", code, err)
	}
	return department, nil
}

// ListDepartments retrieves all departments
func (s *CatalogService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	departments, err := s.departmentStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving departments: %w", err)
	}
	return departments, nil
}

// DeleteDepartment deletes a department by ID
func (s *CatalogService) DeleteDepartment(ctx context.Context, id int64) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.departmentStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Int64("departmentID", id).Msg("Failed to delete department")
		return fmt.Errorf("error deleting department: %w", err)
	}
	s.logger.Info().Int64("departmentID", id).Msg("Department deleted")
	return nil
}

// CreateCourse adds a course to an existing department.
func (s *CatalogService) CreateCourse(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	input.CourseNumber = strings.TrimSpace(input.CourseNumber)
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		if input.Credits < 0 {
			return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidCredits, input.Credits)
		}
		return nil, err
	}

	course := &models.Course{
		ID:           uuid.New(),
		DepartmentID: input.DepartmentID,
		CourseNumber: input.CourseNumber,
		Title:        input.Title,
		Description:  input.Description,
		Credits:      input.Credits,
	}

	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.courseStore.Create(ctx, course); err != nil {
		logFailure(s.logger, err).Str("courseNumber", course.CourseNumber).Msg("Failed to create course")
		return nil, fmt.Errorf("error creating course: %w", err)
	}

	s.logger.Info().Str("courseID", course.ID.String()).Str("courseNumber", course.CourseNumber).Msg("Course created")
	return course, nil
}

// GetCourse retrieves a course by ID
func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	course, err := s.courseStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// ListCoursesByDepartment retrieves the courses of one department
func (s *CatalogService) ListCoursesByDepartment(ctx context.Context, departmentID int64) ([]*models.Course, error) {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	courses, err := s.courseStore.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}
	return courses, nil
}

// DeleteCourse deletes a course. Its prerequisite edges and offerings go with it.
func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := storeContext(ctx, s.storeTimeout)
	defer cancel()
	if err := s.courseStore.Delete(ctx, id); err != nil {
		logFailure(s.logger, err).Str("courseID", id.String()).Msg("Failed to delete course")
		return fmt.Errorf("error deleting course: %w", err)
	}
	s.logger.Info().Str("courseID", id.String()).Msg("Course deleted")
	return nil
}
