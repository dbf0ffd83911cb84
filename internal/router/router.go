package router

import (
	"net/http"
	"time"

	"github.com/eduvio/examdesk/internal/config"
	"github.com/eduvio/examdesk/internal/handler"
	"github.com/eduvio/examdesk/internal/middleware"
	"github.com/eduvio/examdesk/internal/response"
	"github.com/eduvio/examdesk/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Exam        *handler.ExamHandler
	Question    *handler.QuestionHandler
	StudentExam *handler.StudentExamHandler
	StudentMgmt *handler.StudentManagementHandler
	Taxonomy    *handler.TaxonomyHandler
	Monitor     *handler.MonitorHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
		auth.GET("/teacher/me", middleware.RequireTeacherJWT(authService), handlers.Auth.Me)
	}

	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/lobby", handlers.StudentExam.Lobby)
		studentAPI.GET("/exams/:id/attempt", handlers.StudentExam.CheckAttempt)
		studentAPI.POST("/exams/:id/take", handlers.StudentExam.StartTake)
		studentAPI.POST("/exams/:id/submit", handlers.StudentExam.Submit)
		studentAPI.GET("/exams/:id/result", handlers.StudentExam.MyResult)
		studentAPI.GET("/exams/:id/result/detail", handlers.StudentExam.MyResultDetailed)
		studentAPI.POST("/exams/:id/strikes", handlers.StudentExam.ReportStrike)
		studentAPI.GET("/exams/:id/strikes", handlers.StudentExam.MyStrikeCount)
	}

	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:id/stream", handlers.WS.ExamWebSocketStream)
	}

	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		// Exam management
		teacherAPI.GET("/exams", handlers.Exam.ListExams)
		teacherAPI.POST("/exams", handlers.Exam.CreateExam)
		teacherAPI.GET("/exams/:id", handlers.Exam.GetExam)
		teacherAPI.PUT("/exams/:id", handlers.Exam.UpdateExam)
		teacherAPI.DELETE("/exams/:id", handlers.Exam.DeleteExam)
		teacherAPI.PUT("/exams/:id/questions", handlers.Exam.ReplaceExamItems)
		teacherAPI.POST("/exams/:id/publish", handlers.Exam.PublishExam)
		teacherAPI.POST("/exams/:id/unpublish", handlers.Exam.UnpublishExam)
		teacherAPI.GET("/exams/:id/results", handlers.Exam.ExamResults)
		teacherAPI.GET("/exams/:id/monitor", handlers.Monitor.MonitorExamSSE)
		teacherAPI.GET("/exams/:id/strikes", handlers.Monitor.ListStrikes)

		// Question bank
		teacherAPI.GET("/questions", handlers.Question.ListQuestions)
		teacherAPI.POST("/questions", handlers.Question.CreateQuestion)
		teacherAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		teacherAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		teacherAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Student management
		teacherAPI.GET("/students", handlers.StudentMgmt.ListStudents)
		teacherAPI.POST("/students", handlers.StudentMgmt.CreateStudent)
		teacherAPI.PUT("/students/:id", handlers.StudentMgmt.UpdateStudent)
		teacherAPI.DELETE("/students/:id", handlers.StudentMgmt.DeleteStudent)
		teacherAPI.POST("/students/:id/reset-session", handlers.StudentMgmt.ResetStudentSession)

		// Classes, subjects, categories
		teacherAPI.GET("/classes", handlers.Taxonomy.ListClasses)
		teacherAPI.POST("/classes", handlers.Taxonomy.CreateClass)
		teacherAPI.PUT("/classes/:id", handlers.Taxonomy.UpdateClass)
		teacherAPI.DELETE("/classes/:id", handlers.Taxonomy.DeleteClass)

		teacherAPI.GET("/subjects", handlers.Taxonomy.ListSubjects)
		teacherAPI.POST("/subjects", handlers.Taxonomy.CreateSubject)
		teacherAPI.DELETE("/subjects/:id", handlers.Taxonomy.DeleteSubject)

		teacherAPI.GET("/categories", handlers.Taxonomy.ListCategories)
		teacherAPI.POST("/categories", handlers.Taxonomy.CreateCategory)
		teacherAPI.DELETE("/categories/:id", handlers.Taxonomy.DeleteCategory)
	}

	return router
}
