package services

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/auth"
)

// ── Mock DepartmentStore ──

type mockDepartmentStore struct {
	mu          sync.Mutex
	nextID      int64
	departments map[int64]*models.Department
	// courses, when set, blocks deleting a department that still has courses.
	courses *mockCourseStore
}

func newMockDepartmentStore() *mockDepartmentStore {
	return &mockDepartmentStore{departments: make(map[int64]*models.Department)}
}

func (m *mockDepartmentStore) Create(_ context.Context, d *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.departments {
		if existing.Code == d.Code {
			return apperrors.ErrDuplicateCode
		}
	}
	m.nextID++
	d.ID = m.nextID
	copied := *d
	m.departments[d.ID] = &copied
	return nil
}

func (m *mockDepartmentStore) GetByID(_ context.Context, id int64) (*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.departments[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, apperrors.ErrDepartmentNotFound
}

func (m *mockDepartmentStore) GetByCode(_ context.Context, code string) (*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.departments {
		if d.Code == code {
			copied := *d
			return &copied, nil
		}
	}
	return nil, apperrors.ErrDepartmentNotFound
}

func (m *mockDepartmentStore) List(_ context.Context) ([]*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Department
	for _, d := range m.departments {
		copied := *d
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockDepartmentStore) Delete(ctx context.Context, id int64) error {
	if m.courses != nil {
		if courses, _ := m.courses.ListByDepartment(ctx, id); len(courses) > 0 {
			return apperrors.ErrDepartmentHasCourses
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.departments[id]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	delete(m.departments, id)
	return nil
}

// ── Mock CourseStore ──

type mockCourseStore struct {
	mu          sync.Mutex
	departments *mockDepartmentStore
	courses     map[uuid.UUID]*models.Course
}

func newMockCourseStore(departments *mockDepartmentStore) *mockCourseStore {
	return &mockCourseStore{departments: departments, courses: make(map[uuid.UUID]*models.Course)}
}

func (m *mockCourseStore) Create(ctx context.Context, c *models.Course) error {
	if _, err := m.departments.GetByID(ctx, c.DepartmentID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.courses[c.ID] = &copied
	return nil
}

func (m *mockCourseStore) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperrors.ErrCourseNotFound
}

func (m *mockCourseStore) ListByDepartment(_ context.Context, departmentID int64) ([]*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Course
	for _, c := range m.courses {
		if c.DepartmentID == departmentID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseNumber < result[j].CourseNumber })
	return result, nil
}

func (m *mockCourseStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(m.courses, id)
	return nil
}

// ── Mock PrerequisiteStore ──

type mockPrerequisiteStore struct {
	mu      sync.Mutex
	courses *mockCourseStore
	edges   map[models.PrerequisiteEdge]bool
	lookups int
}

func newMockPrerequisiteStore(courses *mockCourseStore) *mockPrerequisiteStore {
	return &mockPrerequisiteStore{courses: courses, edges: make(map[models.PrerequisiteEdge]bool)}
}

func (m *mockPrerequisiteStore) Add(_ context.Context, edge models.PrerequisiteEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edge] = true
	return nil
}

func (m *mockPrerequisiteStore) Remove(_ context.Context, edge models.PrerequisiteEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edges, edge)
	return nil
}

func (m *mockPrerequisiteStore) ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]*models.Course, error) {
	m.mu.Lock()
	m.lookups++
	var ids []uuid.UUID
	for edge := range m.edges {
		if edge.CourseID == courseID {
			ids = append(ids, edge.PrerequisiteID)
		}
	}
	m.mu.Unlock()

	var result []*models.Course
	for _, id := range ids {
		c, err := m.courses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// ── Mock TermStore ──

type mockTermStore struct {
	mu     sync.Mutex
	nextID int64
	terms  map[int64]*models.Term
}

func newMockTermStore() *mockTermStore {
	return &mockTermStore{terms: make(map[int64]*models.Term)}
}

func (m *mockTermStore) Create(_ context.Context, t *models.Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	copied := *t
	m.terms[t.ID] = &copied
	return nil
}

func (m *mockTermStore) GetByID(_ context.Context, id int64) (*models.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.terms[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperrors.ErrTermNotFound
}

func (m *mockTermStore) List(_ context.Context) ([]*models.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Term
	for _, t := range m.terms {
		copied := *t
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

// ── Mock OfferingStore ──

type mockOfferingStore struct {
	mu        sync.Mutex
	courses   *mockCourseStore
	terms     *mockTermStore
	offerings map[uuid.UUID]*models.CourseOffering
}

func newMockOfferingStore(courses *mockCourseStore, terms *mockTermStore) *mockOfferingStore {
	return &mockOfferingStore{courses: courses, terms: terms, offerings: make(map[uuid.UUID]*models.CourseOffering)}
}

func (m *mockOfferingStore) Create(ctx context.Context, o *models.CourseOffering) error {
	if _, err := m.courses.GetByID(ctx, o.CourseID); err != nil {
		return err
	}
	if _, err := m.terms.GetByID(ctx, o.TermID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *o
	m.offerings[o.ID] = &copied
	return nil
}

func (m *mockOfferingStore) GetByID(_ context.Context, id uuid.UUID) (*models.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.offerings[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, apperrors.ErrOfferingNotFound
}

func (m *mockOfferingStore) ListByTerm(_ context.Context, termID int64) ([]*models.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.CourseOffering
	for _, o := range m.offerings {
		if o.TermID == termID {
			copied := *o
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockOfferingStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offerings[id]; !ok {
		return apperrors.ErrOfferingNotFound
	}
	delete(m.offerings, id)
	return nil
}

// ── Mock MeetingStore ──

type mockMeetingStore struct {
	mu       sync.Mutex
	nextID   int64
	meetings map[int64]*models.MeetingEntry
}

func newMockMeetingStore() *mockMeetingStore {
	return &mockMeetingStore{meetings: make(map[int64]*models.MeetingEntry)}
}

func (m *mockMeetingStore) Create(_ context.Context, e *models.MeetingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	copied := *e
	m.meetings[e.ID] = &copied
	return nil
}

func (m *mockMeetingStore) ListByOffering(_ context.Context, offeringID uuid.UUID) ([]*models.MeetingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.MeetingEntry
	for _, e := range m.meetings {
		if e.OfferingID == offeringID {
			copied := *e
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockMeetingStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meetings[id]; !ok {
		return apperrors.ErrMeetingNotFound
	}
	delete(m.meetings, id)
	return nil
}

// ── Mock RegistrationStore ──

// mockRegistrationStore counts and inserts in separate critical sections, so
// capacity holds only when callers serialize admissions themselves.
type mockRegistrationStore struct {
	mu            sync.Mutex
	offerings     *mockOfferingStore
	terms         *mockTermStore
	registrations map[uuid.UUID]*models.Registration
	statusWrites  int
}

func newMockRegistrationStore(offerings *mockOfferingStore, terms *mockTermStore) *mockRegistrationStore {
	return &mockRegistrationStore{
		offerings:     offerings,
		terms:         terms,
		registrations: make(map[uuid.UUID]*models.Registration),
	}
}

func (m *mockRegistrationStore) countRegistered(offeringID uuid.UUID) int {
	n := 0
	for _, r := range m.registrations {
		if r.OfferingID == offeringID && r.Status == models.StatusRegistered {
			n++
		}
	}
	return n
}

func (m *mockRegistrationStore) InsertWithinCapacity(_ context.Context, reg *models.Registration, capacity int, allowWaitlist bool) error {
	m.mu.Lock()
	count := m.countRegistered(reg.OfferingID)
	m.mu.Unlock()

	runtime.Gosched()

	status := models.StatusRegistered
	if count >= capacity {
		if !allowWaitlist {
			return apperrors.ErrCapacityExceeded
		}
		status = models.StatusWaitlisted
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	reg.Status = status
	copied := *reg
	m.registrations[reg.ID] = &copied
	return nil
}

func (m *mockRegistrationStore) PromoteOldestWaitlisted(_ context.Context, offeringID uuid.UUID, capacity int) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countRegistered(offeringID) >= capacity {
		return nil, apperrors.ErrCapacityExceeded
	}
	var oldest *models.Registration
	for _, r := range m.registrations {
		if r.OfferingID != offeringID || r.Status != models.StatusWaitlisted {
			continue
		}
		if oldest == nil || r.RegisteredAt.Before(oldest.RegisteredAt) ||
			(r.RegisteredAt.Equal(oldest.RegisteredAt) && r.ID.String() < oldest.ID.String()) {
			oldest = r
		}
	}
	if oldest == nil {
		return nil, apperrors.ErrWaitlistEmpty
	}
	oldest.Status = models.StatusRegistered
	copied := *oldest
	return &copied, nil
}

func (m *mockRegistrationStore) HasActive(_ context.Context, studentID, offeringID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.registrations {
		if r.StudentID == studentID && r.OfferingID == offeringID && r.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRegistrationStore) CountRegistered(_ context.Context, offeringID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countRegistered(offeringID), nil
}

func (m *mockRegistrationStore) CompletedCourseIDs(ctx context.Context, studentID uuid.UUID, before time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	var held []models.Registration
	for _, r := range m.registrations {
		if r.StudentID == studentID && r.Status == models.StatusRegistered {
			held = append(held, *r)
		}
	}
	m.mu.Unlock()

	var ids []uuid.UUID
	for _, r := range held {
		o, err := m.offerings.GetByID(ctx, r.OfferingID)
		if err != nil {
			return nil, err
		}
		t, err := m.terms.GetByID(ctx, o.TermID)
		if err != nil {
			return nil, err
		}
		if t.EndDate.Before(before) {
			ids = append(ids, o.CourseID)
		}
	}
	return ids, nil
}

func (m *mockRegistrationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.registrations[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, apperrors.ErrRegistrationNotFound
}

func (m *mockRegistrationStore) list(match func(*models.Registration) bool) []*models.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.Registration
	for _, r := range m.registrations {
		if match(r) {
			copied := *r
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegisteredAt.Before(result[j].RegisteredAt) })
	return result
}

func (m *mockRegistrationStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*models.Registration, error) {
	return m.list(func(r *models.Registration) bool { return r.StudentID == studentID }), nil
}

func (m *mockRegistrationStore) ListByOffering(_ context.Context, offeringID uuid.UUID) ([]*models.Registration, error) {
	return m.list(func(r *models.Registration) bool { return r.OfferingID == offeringID }), nil
}

func (m *mockRegistrationStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.RegistrationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registrations[id]
	if !ok {
		return apperrors.ErrRegistrationNotFound
	}
	r.Status = status
	m.statusWrites++
	return nil
}

func (m *mockRegistrationStore) UpdateGrade(_ context.Context, id uuid.UUID, grade models.Grade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registrations[id]
	if !ok {
		return apperrors.ErrRegistrationNotFound
	}
	r.Grade = &grade
	return nil
}

func (m *mockRegistrationStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[id]; !ok {
		return apperrors.ErrRegistrationNotFound
	}
	delete(m.registrations, id)
	return nil
}

// ── Mock UserStore ──

type mockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock StudentProfileStore ──

type mockStudentProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.StudentProfile
}

func newMockStudentProfileStore() *mockStudentProfileStore {
	return &mockStudentProfileStore{profiles: make(map[uuid.UUID]*models.StudentProfile)}
}

func (m *mockStudentProfileStore) Create(_ context.Context, p *models.StudentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; ok {
		return apperrors.ErrStudentProfileExists
	}
	for _, existing := range m.profiles {
		if existing.StudentNumber == p.StudentNumber {
			return apperrors.ErrStudentNumberExists
		}
	}
	copied := *p
	m.profiles[p.UserID] = &copied
	return nil
}

func (m *mockStudentProfileStore) GetByUserID(_ context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

// ── Plain-text hasher and fixed token issuer ──

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hashedPassword, password string) bool {
	return hashedPassword == "hashed:"+password
}

func newTestTokenIssuer() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", Expiration: time.Hour, TokenIssuer: "registrar-test"})
}

// ── Fixture ──

type testStores struct {
	departments   *mockDepartmentStore
	courses       *mockCourseStore
	prerequisites *mockPrerequisiteStore
	terms         *mockTermStore
	offerings     *mockOfferingStore
	meetings      *mockMeetingStore
	registrations *mockRegistrationStore
	users         *mockUserStore
	students      *mockStudentProfileStore
}

func newTestStores() *testStores {
	departments := newMockDepartmentStore()
	courses := newMockCourseStore(departments)
	departments.courses = courses
	terms := newMockTermStore()
	offerings := newMockOfferingStore(courses, terms)
	return &testStores{
		departments:   departments,
		courses:       courses,
		prerequisites: newMockPrerequisiteStore(courses),
		terms:         terms,
		offerings:     offerings,
		meetings:      newMockMeetingStore(),
		registrations: newMockRegistrationStore(offerings, terms),
		users:         newMockUserStore(),
		students:      newMockStudentProfileStore(),
	}
}

func (ts *testStores) stores() Stores {
	return Stores{
		Departments:   ts.departments,
		Courses:       ts.courses,
		Prerequisites: ts.prerequisites,
		Terms:         ts.terms,
		Offerings:     ts.offerings,
		Meetings:      ts.meetings,
		Registrations: ts.registrations,
		Users:         ts.users,
		Students:      ts.students,
	}
}
