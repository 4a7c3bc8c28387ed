package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/controllers"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrls *controllers.Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrls.AuthController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	adminOrTeacher := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleTeacher)

	authenticated.GET("/auth/me", ctrls.AuthController.Me)

	// Student routes
	students := authenticated.Group("/students")
	{
		students.GET("", ctrls.StudentController.List)
		students.GET("/:id", ctrls.StudentController.Get)

		studentsAdminProtected := students.Group("")
		studentsAdminProtected.Use(adminOnly)
		{
			studentsAdminProtected.POST("", ctrls.StudentController.Create)
			studentsAdminProtected.PUT("/:id", ctrls.StudentController.Update)
			studentsAdminProtected.DELETE("/:id", ctrls.StudentController.Delete)
		}
	}

	// Teacher routes
	teachers := authenticated.Group("/teachers")
	{
		teachers.GET("", ctrls.TeacherController.List)
		teachers.GET("/:id", ctrls.TeacherController.Get)

		teachersAdminProtected := teachers.Group("")
		teachersAdminProtected.Use(adminOnly)
		{
			teachersAdminProtected.POST("", ctrls.TeacherController.Create)
			teachersAdminProtected.PUT("/:id", ctrls.TeacherController.Update)
			teachersAdminProtected.DELETE("/:id", ctrls.TeacherController.Delete)
		}
	}

	// Parent routes (listing restricted to staff)
	parents := authenticated.Group("/parents")
	parents.Use(adminOrTeacher)
	{
		parents.GET("", ctrls.ParentController.List)
		parents.GET("/:id", ctrls.ParentController.Get)

		parentsAdminProtected := parents.Group("")
		parentsAdminProtected.Use(adminOnly)
		{
			parentsAdminProtected.POST("", ctrls.ParentController.Create)
			parentsAdminProtected.PUT("/:id", ctrls.ParentController.Update)
			parentsAdminProtected.DELETE("/:id", ctrls.ParentController.Delete)
		}
	}

	// Class routes
	classes := authenticated.Group("/classes")
	{
		classes.GET("", ctrls.SchoolController.ListClasses)
		classes.GET("/:id", ctrls.SchoolController.GetClass)

		classesAdminProtected := classes.Group("")
		classesAdminProtected.Use(adminOnly)
		{
			classesAdminProtected.POST("", ctrls.SchoolController.CreateClass)
			classesAdminProtected.PUT("/:id", ctrls.SchoolController.UpdateClass)
			classesAdminProtected.DELETE("/:id", ctrls.SchoolController.DeleteClass)
		}
	}

	// Grade levels (reference data)
	authenticated.GET("/grades", ctrls.SchoolController.ListGrades)

	// Subject routes
	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", ctrls.SchoolController.ListSubjects)
		subjects.GET("/:id", ctrls.SchoolController.GetSubject)

		subjectsAdminProtected := subjects.Group("")
		subjectsAdminProtected.Use(adminOnly)
		{
			subjectsAdminProtected.POST("", ctrls.SchoolController.CreateSubject)
			subjectsAdminProtected.PUT("/:id", ctrls.SchoolController.UpdateSubject)
			subjectsAdminProtected.DELETE("/:id", ctrls.SchoolController.DeleteSubject)
		}
	}

	// Lesson routes
	lessons := authenticated.Group("/lessons")
	{
		lessons.GET("", ctrls.SchoolController.ListLessons)
		lessons.GET("/:id", ctrls.SchoolController.GetLesson)

		lessonsAdminProtected := lessons.Group("")
		lessonsAdminProtected.Use(adminOnly)
		{
			lessonsAdminProtected.POST("", ctrls.SchoolController.CreateLesson)
			lessonsAdminProtected.PUT("/:id", ctrls.SchoolController.UpdateLesson)
			lessonsAdminProtected.DELETE("/:id", ctrls.SchoolController.DeleteLesson)
		}
	}

	// Exam routes - teachers manage exams for their own lessons
	exams := authenticated.Group("/exams")
	{
		exams.GET("", ctrls.AssessmentController.ListExams)
		exams.GET("/:id", ctrls.AssessmentController.GetExam)

		examsStaffProtected := exams.Group("")
		examsStaffProtected.Use(adminOrTeacher)
		{
			examsStaffProtected.POST("", ctrls.AssessmentController.CreateExam)
			examsStaffProtected.PUT("/:id", ctrls.AssessmentController.UpdateExam)
			examsStaffProtected.DELETE("/:id", ctrls.AssessmentController.DeleteExam)
		}
	}

	// Assignment routes
	assignments := authenticated.Group("/assignments")
	{
		assignments.GET("", ctrls.AssessmentController.ListAssignments)
		assignments.GET("/:id", ctrls.AssessmentController.GetAssignment)

		assignmentsStaffProtected := assignments.Group("")
		assignmentsStaffProtected.Use(adminOrTeacher)
		{
			assignmentsStaffProtected.POST("", ctrls.AssessmentController.CreateAssignment)
			assignmentsStaffProtected.PUT("/:id", ctrls.AssessmentController.UpdateAssignment)
			assignmentsStaffProtected.DELETE("/:id", ctrls.AssessmentController.DeleteAssignment)
		}
	}

	// Result routes
	results := authenticated.Group("/results")
	{
		results.GET("", ctrls.AssessmentController.ListResults)
		results.GET("/:id", ctrls.AssessmentController.GetResult)

		resultsStaffProtected := results.Group("")
		resultsStaffProtected.Use(adminOrTeacher)
		{
			resultsStaffProtected.GET("/export", ctrls.ExportController.Results)
			resultsStaffProtected.POST("", ctrls.AssessmentController.CreateResult)
			resultsStaffProtected.PUT("/:id", ctrls.AssessmentController.UpdateResult)
			resultsStaffProtected.DELETE("/:id", ctrls.AssessmentController.DeleteResult)
		}
	}

	// Attendance routes
	attendances := authenticated.Group("/attendances")
	{
		attendances.GET("", ctrls.AttendanceController.List)
		attendances.GET("/:id", ctrls.AttendanceController.Get)

		attendancesStaffProtected := attendances.Group("")
		attendancesStaffProtected.Use(adminOrTeacher)
		{
			attendancesStaffProtected.GET("/export", ctrls.ExportController.Attendance)
			attendancesStaffProtected.POST("", ctrls.AttendanceController.Create)
			attendancesStaffProtected.PUT("/:id", ctrls.AttendanceController.Update)
			attendancesStaffProtected.DELETE("/:id", ctrls.AttendanceController.Delete)
		}
	}

	// Event routes
	events := authenticated.Group("/events")
	{
		events.GET("", ctrls.BulletinController.ListEvents)
		events.GET("/:id", ctrls.BulletinController.GetEvent)

		eventsAdminProtected := events.Group("")
		eventsAdminProtected.Use(adminOnly)
		{
			eventsAdminProtected.POST("", ctrls.BulletinController.CreateEvent)
			eventsAdminProtected.PUT("/:id", ctrls.BulletinController.UpdateEvent)
			eventsAdminProtected.DELETE("/:id", ctrls.BulletinController.DeleteEvent)
		}
	}

	// Announcement routes
	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", ctrls.BulletinController.ListAnnouncements)
		announcements.GET("/:id", ctrls.BulletinController.GetAnnouncement)

		announcementsAdminProtected := announcements.Group("")
		announcementsAdminProtected.Use(adminOnly)
		{
			announcementsAdminProtected.POST("", ctrls.BulletinController.CreateAnnouncement)
			announcementsAdminProtected.PUT("/:id", ctrls.BulletinController.UpdateAnnouncement)
			announcementsAdminProtected.DELETE("/:id", ctrls.BulletinController.DeleteAnnouncement)
		}
	}

	// Aggregate search across every entity visible to the caller
	authenticated.GET("/search", ctrls.SearchController.Search)

	// Dashboard summaries (admin only)
	dashboard := authenticated.Group("/dashboard")
	dashboard.Use(adminOnly)
	{
		dashboard.GET("/overview", ctrls.DashboardController.Overview)
		dashboard.GET("/students-by-sex", ctrls.DashboardController.StudentsBySex)
		dashboard.GET("/weekly-attendance", ctrls.DashboardController.WeeklyAttendance)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
