package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appModels "github.com/yigit/registrar/internal/app/models"
	appServices "github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Admin describes the administrator account created by CreateDefaultData.
// An empty Email skips the account.
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type defaultCourse struct {
	number        string
	title         string
	credits       int
	prerequisites []string
}

var defaultCourses = []defaultCourse{
	{number: "COSC 1P02", title: "Introduction to Computer Science", credits: 3},
	{number: "COSC 1P03", title: "Introduction to Data Structures", credits: 3, prerequisites: []string{"COSC 1P02"}},
	{number: "COSC 2P03", title: "Advanced Data Structures", credits: 3, prerequisites: []string{"COSC 1P03"}},
	{number: "COSC 3P03", title: "Design and Analysis of Algorithms", credits: 3, prerequisites: []string{"COSC 2P03"}},
}

var defaultTerms = [][2]time.Time{
	{time.Date(2024, time.September, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC)},
	{time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)},
}

// CreateDefaultData creates the default department, courses, prerequisites,
// terms and admin account if they don't exist. Errors are collected so one
// failure does not stop the rest.
func CreateDefaultData(ctx context.Context, svc *appServices.Services, admin Admin, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Department/Courses/Terms)...")
	var finalErr error

	department, err := svc.Catalog.CreateDepartment(ctx, "COSC", "Computer Science")
	if errors.Is(err, apperrors.ErrDuplicateCode) {
		department, err = svc.Catalog.GetDepartmentByCode(ctx, "COSC")
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating computer science department")
		return err
	}

	courseIDs, err := createCourses(ctx, svc, department.ID, lgr)
	finalErr = errors.Join(finalErr, err)

	for _, c := range defaultCourses {
		for _, number := range c.prerequisites {
			courseID, ok1 := courseIDs[c.number]
			prereqID, ok2 := courseIDs[number]
			if !ok1 || !ok2 {
				continue
			}
			if err := svc.Prerequisites.AddPrerequisite(ctx, courseID, prereqID); err != nil {
				lgr.Error().Err(err).Str("course", c.number).Str("prerequisite", number).Msg("Error adding prerequisite")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	finalErr = errors.Join(finalErr, createTerms(ctx, svc, lgr))

	if admin.Email != "" {
		_, err := svc.Identity.CreateUser(ctx, appServices.CreateUserInput{
			Email:     admin.Email,
			Password:  admin.Password,
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			Role:      appModels.RoleAdmin,
		})
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Debug().Str("email", admin.Email).Msg("Admin account already exists")
		case err != nil:
			lgr.Error().Err(err).Str("email", admin.Email).Msg("Error creating admin account")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data ready")
	}
	return finalErr
}

func createCourses(ctx context.Context, svc *appServices.Services, departmentID int64, lgr zerolog.Logger) (map[string]uuid.UUID, error) {
	existing, err := svc.Catalog.ListCoursesByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(defaultCourses))
	for _, course := range existing {
		ids[course.CourseNumber] = course.ID
	}

	var finalErr error
	for _, c := range defaultCourses {
		if _, ok := ids[c.number]; ok {
			continue
		}
		course, err := svc.Catalog.CreateCourse(ctx, appServices.CreateCourseInput{
			DepartmentID: departmentID,
			CourseNumber: c.number,
			Title:        c.title,
			Credits:      c.credits,
		})
		if err != nil {
			lgr.Error().Err(err).Str("course", c.number).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		ids[c.number] = course.ID
	}
	return ids, finalErr
}

func createTerms(ctx context.Context, svc *appServices.Services, lgr zerolog.Logger) error {
	existing, err := svc.Terms.ListTerms(ctx)
	if err != nil {
		return err
	}

	var finalErr error
	for _, dates := range defaultTerms {
		name := appModels.TermName(dates[0])
		if hasTerm(existing, name) {
			continue
		}
		if _, err := svc.Terms.CreateTerm(ctx, dates[0], dates[1]); err != nil {
			lgr.Error().Err(err).Str("term", name).Msg("Error creating term")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

func hasTerm(terms []*appModels.Term, name string) bool {
	for _, t := range terms {
		if t.Name == name {
			return true
		}
	}
	return false
}
