package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/metrics"
)

func countByStatus(regs []*models.Registration) map[models.RegistrationStatus]int {
	counts := map[models.RegistrationStatus]int{}
	for _, r := range regs {
		counts[r.Status]++
	}
	return counts
}

func registerConcurrently(t *testing.T, svc *Services, students []uuid.UUID, offeringID uuid.UUID) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make(chan error, len(students))
	for _, student := range students {
		wg.Add(1)
		go func(student uuid.UUID) {
			defer wg.Done()
			if _, err := svc.Registrations.Register(context.Background(), student, offeringID); err != nil {
				errs <- err
			}
		}(student)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestRegistrationService_TwoStudentsOneSeat(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	cosc101 := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, cosc101.ID, fx.currentTerm.ID, 1)

	s1 := seedUser(t, svc, "s1@example.edu", models.RoleStudent)
	s2 := seedUser(t, svc, "s2@example.edu", models.RoleStudent)

	registerConcurrently(t, svc, []uuid.UUID{s1.ID, s2.ID}, offering.ID)

	regs, err := svc.Registrations.ListForOffering(ctx, offering.ID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, map[models.RegistrationStatus]int{
		models.StatusRegistered: 1,
		models.StatusWaitlisted: 1,
	}, countByStatus(regs))

	enrolled, err := svc.Registrations.CurrentEnrollment(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, enrolled)
}

func TestRegistrationService_ConcurrentCapacity(t *testing.T) {
	for _, tc := range []struct{ capacity, students int }{
		{0, 3},
		{1, 8},
		{3, 20},
		{10, 25},
	} {
		t.Run(fmt.Sprintf("C=%d/N=%d", tc.capacity, tc.students), func(t *testing.T) {
			svc, ts := setupTestServices(t)
			fx := seedCatalog(t, svc)
			course := seedCourse(t, svc, fx.dept.ID, "COSC101")
			offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, tc.capacity)

			students := make([]uuid.UUID, tc.students)
			for i := range students {
				students[i] = seedUser(t, svc, fmt.Sprintf("s%d@example.edu", i), models.RoleStudent).ID
			}

			registerConcurrently(t, svc, students, offering.ID)

			regs, err := svc.Registrations.ListForOffering(context.Background(), offering.ID)
			require.NoError(t, err)
			require.Len(t, regs, tc.students)
			counts := countByStatus(regs)
			assert.Equal(t, tc.capacity, counts[models.StatusRegistered])
			assert.Equal(t, tc.students-tc.capacity, counts[models.StatusWaitlisted])

			seen := map[uuid.UUID]bool{}
			for _, r := range regs {
				assert.False(t, seen[r.StudentID], "duplicate row for student")
				seen[r.StudentID] = true
			}
			assert.Len(t, ts.registrations.registrations, tc.students)
		})
	}
}

func TestRegistrationService_SequentialCapacity(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 2)

	var statuses []models.RegistrationStatus
	for i := 0; i < 3; i++ {
		student := seedUser(t, svc, fmt.Sprintf("s%d@example.edu", i), models.RoleStudent)
		reg, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
		require.NoError(t, err)
		assert.Equal(t, testNow.Year(), reg.RegisteredAt.Year())
		statuses = append(statuses, reg.Status)
	}
	assert.Equal(t, []models.RegistrationStatus{
		models.StatusRegistered, models.StatusRegistered, models.StatusWaitlisted,
	}, statuses)
}

func TestRegistrationService_RegisterOrReject(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)

	s1 := seedUser(t, svc, "s1@example.edu", models.RoleStudent)
	s2 := seedUser(t, svc, "s2@example.edu", models.RoleStudent)

	reg, err := svc.Registrations.RegisterOrReject(ctx, s1.ID, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistered, reg.Status)

	_, err = svc.Registrations.RegisterOrReject(ctx, s2.ID, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	regs, err := svc.Registrations.ListForOffering(ctx, offering.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}

func TestRegistrationService_UnmetPrerequisite(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	a := seedCourse(t, svc, fx.dept.ID, "COSC211")
	b := seedCourse(t, svc, fx.dept.ID, "COSC101")
	require.NoError(t, svc.Prerequisites.AddPrerequisite(ctx, a.ID, b.ID))

	offering := seedOffering(t, svc, a.ID, fx.currentTerm.ID, 10)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)

	_, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrEligibility)
	assert.Equal(t, []string{b.ID.String()}, apperrors.DetailsOf(err)["missingPrerequisites"])

	enrolled, err := svc.Registrations.CurrentEnrollment(ctx, offering.ID)
	require.NoError(t, err)
	assert.Zero(t, enrolled)
}

func TestRegistrationService_PrerequisiteCompletedInPriorTerm(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	a := seedCourse(t, svc, fx.dept.ID, "COSC211")
	b := seedCourse(t, svc, fx.dept.ID, "COSC101")
	require.NoError(t, svc.Prerequisites.AddPrerequisite(ctx, a.ID, b.ID))

	pastB := seedOffering(t, svc, b.ID, fx.pastTerm.ID, 10)
	currentB := seedOffering(t, svc, b.ID, fx.currentTerm.ID, 10)
	target := seedOffering(t, svc, a.ID, fx.currentTerm.ID, 10)

	// A registration in the running term does not count.
	concurrent := seedUser(t, svc, "concurrent@example.edu", models.RoleStudent)
	_, err := svc.Registrations.Register(ctx, concurrent.ID, currentB.ID)
	require.NoError(t, err)
	_, err = svc.Registrations.Register(ctx, concurrent.ID, target.ID)
	assert.ErrorIs(t, err, apperrors.ErrEligibility)

	// A dropped registration in the finished term does not count either.
	dropper := seedUser(t, svc, "dropper@example.edu", models.RoleStudent)
	dropped, err := svc.Registrations.Register(ctx, dropper.ID, pastB.ID)
	require.NoError(t, err)
	_, err = svc.Registrations.Drop(ctx, dropped.ID)
	require.NoError(t, err)
	_, err = svc.Registrations.Register(ctx, dropper.ID, target.ID)
	assert.ErrorIs(t, err, apperrors.ErrEligibility)

	completed := seedUser(t, svc, "done@example.edu", models.RoleStudent)
	_, err = svc.Registrations.Register(ctx, completed.ID, pastB.ID)
	require.NoError(t, err)
	reg, err := svc.Registrations.Register(ctx, completed.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistered, reg.Status)
}

func TestRegistrationService_StudentAndOfferingMustExist(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 10)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)
	admin := seedUser(t, svc, "admin@example.edu", models.RoleAdmin)

	_, err := svc.Registrations.Register(ctx, uuid.New(), offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.Registrations.Register(ctx, admin.ID, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.Registrations.Register(ctx, student.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrOfferingNotFound)
}

func TestRegistrationService_DuplicateActiveRegistration(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 10)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)

	first, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
	require.NoError(t, err)

	_, err = svc.Registrations.Register(ctx, student.ID, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = svc.Registrations.Drop(ctx, first.ID)
	require.NoError(t, err)

	second, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	regs, err := svc.Registrations.ListForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 2)
}

func TestRegistrationService_DropDoesNotPromote(t *testing.T) {
	svc, ts := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)
	s1 := seedUser(t, svc, "s1@example.edu", models.RoleStudent)
	s2 := seedUser(t, svc, "s2@example.edu", models.RoleStudent)

	held, err := svc.Registrations.Register(ctx, s1.ID, offering.ID)
	require.NoError(t, err)
	waiting, err := svc.Registrations.Register(ctx, s2.ID, offering.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusWaitlisted, waiting.Status)

	dropped, err := svc.Registrations.Drop(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDropped, dropped.Status)

	stored, err := svc.Registrations.Get(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDropped, stored.Status)

	stillWaiting, err := svc.Registrations.Get(ctx, waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitlisted, stillWaiting.Status)

	// Dropping again succeeds without another write.
	writes := ts.registrations.statusWrites
	again, err := svc.Registrations.Drop(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDropped, again.Status)
	assert.Equal(t, held.ID, again.ID)
	assert.Equal(t, writes, ts.registrations.statusWrites)

	_, err = svc.Registrations.Drop(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
}

func TestRegistrationService_PromoteWaitlisted(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)

	var regs []*models.Registration
	for i := 0; i < 3; i++ {
		student := seedUser(t, svc, fmt.Sprintf("s%d@example.edu", i), models.RoleStudent)
		reg, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
		require.NoError(t, err)
		regs = append(regs, reg)
	}

	_, err := svc.Registrations.PromoteWaitlisted(ctx, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	_, err = svc.Registrations.Drop(ctx, regs[0].ID)
	require.NoError(t, err)

	promoted, err := svc.Registrations.PromoteWaitlisted(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, regs[1].ID, promoted.ID)
	assert.Equal(t, models.StatusRegistered, promoted.Status)

	_, err = svc.Registrations.Drop(ctx, regs[1].ID)
	require.NoError(t, err)
	_, err = svc.Registrations.Drop(ctx, regs[2].ID)
	require.NoError(t, err)

	_, err = svc.Registrations.PromoteWaitlisted(ctx, offering.ID)
	assert.ErrorIs(t, err, apperrors.ErrWaitlistEmpty)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistrationService_AssignGrade(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)
	s1 := seedUser(t, svc, "s1@example.edu", models.RoleStudent)
	s2 := seedUser(t, svc, "s2@example.edu", models.RoleStudent)

	held, err := svc.Registrations.Register(ctx, s1.ID, offering.ID)
	require.NoError(t, err)
	waiting, err := svc.Registrations.Register(ctx, s2.ID, offering.ID)
	require.NoError(t, err)

	graded, err := svc.Registrations.AssignGrade(ctx, held.ID, models.GradeB)
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, models.GradeB, *graded.Grade)

	regraded, err := svc.Registrations.AssignGradeFromToken(ctx, held.ID, " A ")
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, *regraded.Grade)

	stored, err := svc.Registrations.Get(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeA, *stored.Grade)

	_, err = svc.Registrations.AssignGrade(ctx, waiting.ID, models.GradeA)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.Registrations.Drop(ctx, held.ID)
	require.NoError(t, err)
	_, err = svc.Registrations.AssignGrade(ctx, held.ID, models.GradeC)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.Registrations.AssignGradeFromToken(ctx, held.ID, "Z")
	assert.ErrorIs(t, err, apperrors.ErrInvalidGrade)
}

func TestRegistrationService_Delete(t *testing.T) {
	svc, _ := setupTestServices(t)
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)

	reg, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Registrations.Delete(ctx, reg.ID))
	_, err = svc.Registrations.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistrationService_RecordsMetrics(t *testing.T) {
	ts := newTestStores()
	reg := prometheus.NewRegistry()
	svc := NewServices(ts.stores(), plainHasher{}, newTestTokenIssuer(), Options{
		Now:     func() time.Time { return testNow },
		Logger:  zerolog.Nop(),
		Metrics: metrics.New(reg),
	})
	ctx := context.Background()
	fx := seedCatalog(t, svc)
	a := seedCourse(t, svc, fx.dept.ID, "COSC211")
	b := seedCourse(t, svc, fx.dept.ID, "COSC101")
	require.NoError(t, svc.Prerequisites.AddPrerequisite(ctx, a.ID, b.ID))
	offering := seedOffering(t, svc, b.ID, fx.currentTerm.ID, 1)
	gated := seedOffering(t, svc, a.ID, fx.currentTerm.ID, 1)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)

	_, err := svc.Registrations.Register(ctx, student.ID, offering.ID)
	require.NoError(t, err)
	_, err = svc.Registrations.Register(ctx, student.ID, gated.ID)
	require.ErrorIs(t, err, apperrors.ErrEligibility)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["registrar_admissions_total"])
	assert.True(t, names["registrar_eligibility_rejections_total"])
}

func TestRegistrationService_AdmissionTimeout(t *testing.T) {
	ts := newTestStores()
	svc := NewServices(ts.stores(), plainHasher{}, newTestTokenIssuer(), Options{Logger: zerolog.Nop()})
	fx := seedCatalog(t, svc)
	course := seedCourse(t, svc, fx.dept.ID, "COSC101")
	offering := seedOffering(t, svc, course.ID, fx.currentTerm.ID, 1)
	student := seedUser(t, svc, "s1@example.edu", models.RoleStudent)

	release, err := svc.Registrations.gate.Acquire(context.Background(), offering.ID)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Registrations.Register(ctx, student.ID, offering.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
