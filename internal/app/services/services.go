// Package services contains the business logic between controllers and
// repositories: role checks, domain rules and result shaping.
package services

import (
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/cache"
	"github.com/emre/schoolhub/internal/pkg/auth"
)

// Services bundles every service for dependency injection
type Services struct {
	AuthService       *AuthService
	StudentService    *StudentService
	TeacherService    *TeacherService
	ParentService     *ParentService
	SchoolService     *SchoolService
	AssessmentService *AssessmentService
	AttendanceService *AttendanceService
	BulletinService   *BulletinService
	SearchService     *SearchService
	DashboardService  *DashboardService
	ExportService     *ExportService
}

// NewServices creates all services. cacheClient may be nil, which disables
// dashboard caching.
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, cacheClient *cache.Cache) *Services {
	assessmentService := NewAssessmentService(repos.AssessmentRepository, repos.LessonRepository)
	attendanceService := NewAttendanceService(repos.AttendanceRepository, repos.LessonRepository, cacheClient)

	return &Services{
		AuthService:       NewAuthService(repos, jwtService),
		StudentService:    NewStudentService(repos.StudentRepository, repos.ClassRepository, cacheClient),
		TeacherService:    NewTeacherService(repos.TeacherRepository),
		ParentService:     NewParentService(repos.ParentRepository),
		SchoolService:     NewSchoolService(repos.ClassRepository, repos.LessonRepository),
		AssessmentService: assessmentService,
		AttendanceService: attendanceService,
		BulletinService:   NewBulletinService(repos.BulletinRepository),
		SearchService:     NewSearchService(repos),
		DashboardService:  NewDashboardService(repos, cacheClient),
		ExportService:     NewExportService(assessmentService, attendanceService),
	}
}
