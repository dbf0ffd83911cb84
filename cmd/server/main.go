package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduvio/examdesk/internal/config"
	"github.com/eduvio/examdesk/internal/database"
	"github.com/eduvio/examdesk/internal/handler"
	"github.com/eduvio/examdesk/internal/logger"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/eduvio/examdesk/internal/router"
	"github.com/eduvio/examdesk/internal/service"
	"github.com/eduvio/examdesk/internal/validator"
	"github.com/eduvio/examdesk/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamDesk")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	classRepo := repository.NewClassRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	strikeRepo := repository.NewStrikeRepository(pool)

	authService := service.NewAuthService(cfg, rdb)
	examService := service.NewExamService(examRepo, questionRepo, attemptRepo)
	questionService := service.NewQuestionService(questionRepo, categoryRepo)
	attemptService := service.NewAttemptService(examRepo, questionRepo, attemptRepo)
	studentService := service.NewStudentService(studentRepo, classRepo, authService)
	taxonomyService := service.NewTaxonomyService(classRepo, subjectRepo, categoryRepo)
	monitorService := service.NewMonitorService(strikeRepo, attemptRepo, rdb)

	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, studentRepo, teacherRepo),
		Exam:        handler.NewExamHandler(examService),
		Question:    handler.NewQuestionHandler(questionService),
		StudentExam: handler.NewStudentExamHandler(attemptService, monitorService),
		StudentMgmt: handler.NewStudentManagementHandler(studentService),
		Taxonomy:    handler.NewTaxonomyHandler(taxonomyService),
		Monitor:     handler.NewMonitorHandler(examService, monitorService, log),
		WS:          handler.NewWSHandler(examRepo, monitorService, log, cfg.AllowedOrigins),
	}

	// Strike persistence runs in the background so the report fast path
	// never blocks on PostgreSQL.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	strikeWorker := worker.NewStrikeWorker(strikeRepo, rdb, log)
	go strikeWorker.Start(workerCtx)

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop the strike worker and let the buffered batch flush.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
