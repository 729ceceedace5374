package routes

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/config"
	"learnhub/backend/controllers"
	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

// Deps are the backends the routes are served from. Cache may be nil.
type Deps struct {
	Store lms.Gateway
	Cache lms.SummaryCache
	Cfg   *config.Config
	Log   *logger.Logger
}

// AppConfig is the fiber configuration the routes are written for. Handlers
// hand path parameters to the services, which may keep them, so fiber must
// not reuse the request buffer behind those strings.
func AppConfig() fiber.Config {
	return fiber.Config{AppName: "learnhub", Immutable: true}
}

func SetupRoutes(app *fiber.App, d Deps) {
	catalog := lms.NewCatalog(d.Store, d.Log)
	enrollments := lms.NewEnrollmentService(d.Store, d.Store, d.Store, d.Log)
	tracker := lms.NewTracker(d.Store, d.Store, d.Store, d.Store, d.Log)
	quizzes := lms.NewQuizService(d.Store, d.Store, d.Store, d.Cfg.QuizPassRatio, d.Log)
	reviews := lms.NewReviewService(d.Store, d.Store, d.Store, d.Cache, d.Log)
	dashboard := lms.NewDashboard(d.Store, d.Store, d.Store, d.Log)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(d.Cfg)
	studentOnly := middleware.RequireRole(utils.RoleStudent)
	teacherOnly := middleware.RequireRole(utils.RoleTeacher)
	adminMiddleware := middleware.AdminMiddleware()

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return utils.OK(c, fiber.Map{"status": "ok"})
	})

	// Student routes
	enrollmentController := controllers.NewEnrollmentController(enrollments)
	progressController := controllers.NewProgressController(tracker)
	quizController := controllers.NewQuizController(quizzes)
	reviewsController := controllers.NewReviewsController(reviews)
	coursesController := controllers.NewCoursesController(catalog, enrollments, dashboard)

	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", studentOnly, coursesController.GetMyCourses)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Post("/:id/enroll", studentOnly, enrollmentController.EnrollSelf)
	courses.Get("/:id/progress", studentOnly, progressController.GetCourseProgress)
	courses.Post("/:id/lessons/:lessonId/complete", studentOnly, progressController.CompleteLesson)
	courses.Post("/:id/lessons/:lessonId/quiz", studentOnly, quizController.SubmitQuiz)
	courses.Get("/:id/lessons/:lessonId/quiz", studentOnly, quizController.GetQuizResult)

	// Review routes
	courses.Post("/:id/reviews", studentOnly, reviewsController.AddCourseReview)
	courses.Get("/:id/reviews", reviewsController.GetCourseReviews)
	courses.Get("/:id/reviews/summary", reviewsController.GetCourseReviewSummary)
	courses.Post("/:id/lessons/:lessonId/reviews", studentOnly, reviewsController.AddLessonReview)
	courses.Get("/:id/lessons/:lessonId/reviews/summary", reviewsController.GetLessonReviewSummary)

	// Teacher routes
	teacher := app.Group("/api/teacher/courses", authMiddleware, teacherOnly)
	teacher.Get("/", coursesController.GetTeacherCourses)
	teacher.Post("/", coursesController.CreateCourse)
	teacher.Put("/:id", coursesController.UpdateCourse)
	teacher.Post("/:id/lessons", coursesController.AddLesson)
	teacher.Put("/:id/lessons/:lessonId", coursesController.UpdateLesson)
	teacher.Get("/:id/roster", coursesController.GetRoster)
	teacher.Put("/:id/students/:studentId/grade", coursesController.SetGrade)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/enrollments", enrollmentController.AdminEnroll)

	// Webhooks
	recordingController := controllers.NewRecordingController(catalog, d.Log)
	app.Post("/api/webhooks/recordings", middleware.WebhookMiddleware(d.Cfg), recordingController.RecordingWebhook)
}
