package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/config"
	"github.com/vinodekumar123/Tayyari-hub-sub004/database"
	adminctrl "github.com/vinodekumar123/Tayyari-hub-sub004/internal/controller/admin"
	userctrl "github.com/vinodekumar123/Tayyari-hub-sub004/internal/controller/user"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/logger"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewQuizRepository,
			repository.NewAttemptRepository,
			repository.NewResultRepository,
			repository.NewSubmissionRepository,
			repository.NewEnrollmentRepository,
			repository.NewStatsRepository,
			repository.NewKnowledgeRepository,
			repository.NewConversationLogRepository,
		),

		// Services layer
		fx.Provide(
			service.NewQuizService,
			service.NewAttemptService,
			service.NewAnalyticsService,
			service.NewSubmissionService,
			service.NewGeminiLLMService,
			service.NewKnowledgeService,
			service.NewTutorService,
		),

		// API controllers layer
		fx.Provide(
			userctrl.NewQuizController,
			userctrl.NewAttemptController,
			userctrl.NewTutorController,
			adminctrl.NewAdminQuizController,
			adminctrl.NewAdminKnowledgeController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length", "X-Intent", "X-Subject", "X-Confidence"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server
// lifecycle through fx hooks.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	quizCtrl *userctrl.QuizController,
	attemptCtrl *userctrl.AttemptController,
	tutorCtrl *userctrl.TutorController,
	adminQuizCtrl *adminctrl.AdminQuizController,
	adminKnowledgeCtrl *adminctrl.AdminKnowledgeController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/quizzes", adminQuizCtrl.CreateQuiz)
		adminAPIGroup.PATCH("/quizzes/:quiz_id/publish", adminQuizCtrl.SetPublished)
		adminAPIGroup.PATCH("/questions/:question_id/grace-mark", adminQuizCtrl.SetGraceMark)
		adminAPIGroup.POST("/knowledge", adminKnowledgeCtrl.IngestKnowledge)
		adminAPIGroup.GET("/tutor-logs", adminKnowledgeCtrl.GetTutorLogs)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/quizzes", quizCtrl.GetAllQuizzes)
		userAPIGroup.GET("/quizzes/:quiz_id", quizCtrl.GetQuizDetails)
		userAPIGroup.GET("/quizzes/:quiz_id/result", quizCtrl.GetResult)

		userAPIGroup.POST("/quizzes/:quiz_id/attempt", attemptCtrl.StartAttempt)
		userAPIGroup.PATCH("/quizzes/:quiz_id/attempt/progress", attemptCtrl.SaveProgress)
		userAPIGroup.POST("/quizzes/:quiz_id/attempt/heartbeat", attemptCtrl.Heartbeat)
		userAPIGroup.GET("/quizzes/:quiz_id/attempt/save-status", attemptCtrl.SaveStatus)
		userAPIGroup.POST("/quizzes/:quiz_id/submit", attemptCtrl.SubmitQuiz)

		userAPIGroup.POST("/tutor/ask", tutorCtrl.Ask)
		userAPIGroup.POST("/tutor/feedback", tutorCtrl.Feedback)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Tayyari Hub API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Quiz{},
		&model.Question{},
		&model.QuizSeries{},
		&model.Attempt{},
		&model.Result{},
		&model.Submission{},
		&model.Enrollment{},
		&model.UserStats{},
		&model.KnowledgeChunk{},
		&model.ConversationLog{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
