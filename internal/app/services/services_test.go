package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/registrar/internal/app/models"
)

var testNow = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)

// tickingClock advances one second per reading so admission order is observable.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupTestServices(t *testing.T) (*Services, *testStores) {
	t.Helper()
	ts := newTestStores()
	clock := &tickingClock{now: testNow}
	svc := NewServices(ts.stores(), plainHasher{}, newTestTokenIssuer(), Options{
		StoreTimeout:     time.Second,
		AdmissionTimeout: 5 * time.Second,
		Now:              clock.Now,
		Logger:           zerolog.Nop(),
	})
	return svc, ts
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// catalogFixture is the COSC department with a finished term and a running one.
type catalogFixture struct {
	dept        *models.Department
	pastTerm    *models.Term
	currentTerm *models.Term
}

func seedCatalog(t *testing.T, svc *Services) catalogFixture {
	t.Helper()
	ctx := context.Background()

	dept, err := svc.Catalog.CreateDepartment(ctx, "COSC", "Computer Science")
	require.NoError(t, err)
	past, err := svc.Terms.CreateTerm(ctx, day(2024, time.September, 3), day(2024, time.December, 20))
	require.NoError(t, err)
	current, err := svc.Terms.CreateTerm(ctx, day(2025, time.January, 6), day(2025, time.April, 30))
	require.NoError(t, err)

	return catalogFixture{dept: dept, pastTerm: past, currentTerm: current}
}

func seedCourse(t *testing.T, svc *Services, departmentID int64, number string) *models.Course {
	t.Helper()
	course, err := svc.Catalog.CreateCourse(context.Background(), CreateCourseInput{
		DepartmentID: departmentID,
		CourseNumber: number,
		Title:        number + " title",
		Credits:      3,
	})
	require.NoError(t, err)
	return course
}

func seedOffering(t *testing.T, svc *Services, courseID uuid.UUID, termID int64, capacity int) *models.CourseOffering {
	t.Helper()
	offering, err := svc.Offerings.CreateOffering(context.Background(), CreateOfferingInput{
		CourseID:     courseID,
		TermID:       termID,
		InstructorID: uuid.New(),
		Capacity:     capacity,
		Location:     "Pray-Harrold 201",
	})
	require.NoError(t, err)
	return offering
}

func seedUser(t *testing.T, svc *Services, email string, role models.Role) *models.User {
	t.Helper()
	user, err := svc.Identity.CreateUser(context.Background(), CreateUserInput{
		Email:     email,
		Password:  "Passw0rd",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}
