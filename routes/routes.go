package routes

import (
	"attendtrack_go/controllers"
	"attendtrack_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	semesterController := &controllers.SemesterController{}
	subjectController := &controllers.SubjectController{}
	routineController := &controllers.RoutineController{}
	attendanceController := controllers.NewAttendanceController()
	analyticsController := controllers.NewAnalyticsController()
	exportController := controllers.NewExportController()
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(nil)

	// API group
	api := app.Group("/api")

	// Health (no authentication required)
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/register", authController.Register)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware(), middleware.LogActivityMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// Semester routes
	semesters := protected.Group("/semesters")
	semesters.Get("/", semesterController.GetSemesters)
	semesters.Get("/current", semesterController.GetCurrentSemester)
	semesters.Get("/:id", semesterController.GetSemester)
	semesters.Post("/", semesterController.CreateSemester)
	semesters.Put("/:id", semesterController.UpdateSemester)
	semesters.Patch("/:id/current", semesterController.SetCurrentSemester)
	semesters.Delete("/:id", semesterController.DeleteSemester)

	// Subject routes
	semesters.Get("/:semesterId/subjects", subjectController.GetSubjects)
	subjects := protected.Group("/subjects")
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Post("/", subjectController.CreateSubject)
	subjects.Put("/:id", subjectController.UpdateSubject)
	subjects.Delete("/:id", subjectController.DeleteSubject)

	// Routine routes
	semesters.Get("/:semesterId/routine", routineController.GetRoutine)
	semesters.Put("/:semesterId/routine", routineController.CreateOrReplaceRoutine)
	semesters.Post("/:semesterId/routine/entries", routineController.AddEntry)
	protected.Delete("/routine-entries/:entryId", routineController.DeleteEntry)

	// Attendance routes
	semesters.Post("/:semesterId/attendance/generate", attendanceController.GenerateClasses)
	semesters.Post("/:semesterId/attendance/generate-today", attendanceController.GenerateToday)
	semesters.Get("/:semesterId/attendance", attendanceController.GetRecords)
	semesters.Post("/:semesterId/attendance/mark-day", attendanceController.MarkDay)
	semesters.Post("/:semesterId/attendance/mark-holiday", attendanceController.MarkHoliday)

	attendance := protected.Group("/attendance")
	attendance.Get("/today", attendanceController.GetTodayRecords)
	attendance.Post("/adhoc", attendanceController.CreateAdHoc)
	attendance.Post("/bulk", attendanceController.MarkBulk)
	attendance.Patch("/:id", attendanceController.UpdateStatus)
	attendance.Delete("/:id", attendanceController.DeleteRecord)

	// Analytics routes
	subjects.Get("/:id/analytics", analyticsController.GetSubjectAnalytics)
	subjects.Get("/:id/trends", analyticsController.GetSubjectTrends)
	subjects.Get("/:id/history", analyticsController.GetSubjectHistory)
	semesters.Get("/:semesterId/analytics", analyticsController.GetSemesterAnalytics)
	semesters.Get("/:semesterId/alerts", analyticsController.GetAlerts)
	semesters.Get("/:semesterId/dashboard", analyticsController.GetDashboard)

	// Export routes
	semesters.Post("/:semesterId/exports", exportController.CreateExport)
	semesters.Get("/:semesterId/exports", exportController.ListExports)
	protected.Get("/exports/:id/download", exportController.DownloadExport)

	// Activity logs (owner/admin only)
	logs := protected.Group("/logs", middleware.RequireOwnerOrAdmin())
	logs.Get("/", logController.GetLogs)
}
