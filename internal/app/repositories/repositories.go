package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/registrar/internal/app/services"
)

// Repositories holds all the repository instances
type Repositories struct {
	DepartmentRepository     *DepartmentRepository
	CourseRepository         *CourseRepository
	PrerequisiteRepository   *PrerequisiteRepository
	TermRepository           *TermRepository
	OfferingRepository       *OfferingRepository
	MeetingRepository        *MeetingRepository
	RegistrationRepository   *RegistrationRepository
	UserRepository           *UserRepository
	StudentProfileRepository *StudentProfileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		DepartmentRepository:     NewDepartmentRepository(db),
		CourseRepository:         NewCourseRepository(db),
		PrerequisiteRepository:   NewPrerequisiteRepository(db),
		TermRepository:           NewTermRepository(db),
		OfferingRepository:       NewOfferingRepository(db),
		MeetingRepository:        NewMeetingRepository(db),
		RegistrationRepository:   NewRegistrationRepository(db),
		UserRepository:           NewUserRepository(db),
		StudentProfileRepository: NewStudentProfileRepository(db),
	}
}

// Stores exposes the repositories through the interfaces the services consume.
func (r *Repositories) Stores() services.Stores {
	return services.Stores{
		Departments:   r.DepartmentRepository,
		Courses:       r.CourseRepository,
		Prerequisites: r.PrerequisiteRepository,
		Terms:         r.TermRepository,
		Offerings:     r.OfferingRepository,
		Meetings:      r.MeetingRepository,
		Registrations: r.RegistrationRepository,
		Users:         r.UserRepository,
		Students:      r.StudentProfileRepository,
	}
}

var (
	_ services.DepartmentStore     = (*DepartmentRepository)(nil)
	_ services.CourseStore         = (*CourseRepository)(nil)
	_ services.PrerequisiteStore   = (*PrerequisiteRepository)(nil)
	_ services.TermStore           = (*TermRepository)(nil)
	_ services.OfferingStore       = (*OfferingRepository)(nil)
	_ services.MeetingStore        = (*MeetingRepository)(nil)
	_ services.RegistrationStore   = (*RegistrationRepository)(nil)
	_ services.UserStore           = (*UserRepository)(nil)
	_ services.StudentProfileStore = (*StudentProfileRepository)(nil)
)
