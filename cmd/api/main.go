package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/config"
	"github.com/praxislab/praxis-api/internal/database"
	"github.com/praxislab/praxis-api/internal/handler"
	"github.com/praxislab/praxis-api/internal/middleware"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/observability"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
	"github.com/praxislab/praxis-api/internal/router"
	"github.com/praxislab/praxis-api/internal/service"
	"github.com/praxislab/praxis-api/pkg/archive"
	cloud "github.com/praxislab/praxis-api/pkg/cloudinary"
	dockerexec "github.com/praxislab/praxis-api/pkg/docker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Challenge{},
		&models.ChallengeSelection{},
		&models.MCQQuestion{},
		&models.CodingProblem{},
		&models.QuizSubmission{},
		&models.CodeSubmission{},
		&models.FileSubmission{},
		&models.FileAccess{},
		&models.ArchiveSubmission{},
		&models.AutoGradingConfig{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, realtime events stay node-local")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	executor, err := dockerexec.NewDockerExecutor(dockerexec.Config{
		Host:          cfg.DockerHost,
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
		CPUShares:     int64(cfg.CodeRunCPUShares),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create docker executor: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	broadcaster := realtime.NewBroadcaster(hub, redisClient, cfg.RealtimeChannelBase, natsConn, logger)
	broadcaster.Start(rootCtx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	challengeRepo := repository.NewChallengeRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	problemRepo := repository.NewCodingProblemRepository(db)
	quizSubmissionRepo := repository.NewQuizSubmissionRepository(db)
	codeSubmissionRepo := repository.NewCodeSubmissionRepository(db)
	fileSubmissionRepo := repository.NewFileSubmissionRepository(db)
	fileAccessRepo := repository.NewFileAccessRepository(db)
	archiveSubmissionRepo := repository.NewArchiveSubmissionRepository(db)
	gradingConfigRepo := repository.NewGradingConfigRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	extractor := archive.NewExtractor(cfg.ArchiveWorkRoot, logger)
	grader := service.NewArchiveGrader(extractor, logger)

	catalogService := service.NewCatalogService(challengeRepo, problemRepo, validate, logger)
	selectionService := service.NewSelectionService(selectionRepo, challengeRepo, validate, logger)
	quizService := service.NewQuizService(challengeRepo, selectionRepo, questionRepo, quizSubmissionRepo, broadcaster, validate, logger)
	codeService := service.NewCodeService(challengeRepo, selectionRepo, problemRepo, codeSubmissionRepo, executor, broadcaster, validate, logger, service.CodeExecutionConfig{
		ExecutionTimeout: cfg.ExecutionTimeout,
		WorkspaceRoot:    cfg.CodeRunWorkspaceRoot,
	})
	fileChallengeService := service.NewFileChallengeService(challengeRepo, selectionRepo, fileSubmissionRepo, fileAccessRepo, uploader, broadcaster, validate, logger, cfg.MaxUploadSizeMB)
	archiveService := service.NewArchiveService(archiveSubmissionRepo, studentRepo, grader, broadcaster, validate, logger, cfg.ArchiveStorageRoot)
	progressService := service.NewProgressService(challengeRepo, selectionRepo, studentRepo, quizSubmissionRepo, codeSubmissionRepo, fileSubmissionRepo, redisClient, cfg.StatsCacheTTL, logger)
	gradingAdminService := service.NewGradingAdminService(gradingConfigRepo, archiveSubmissionRepo, archiveService, broadcaster, validate, logger)
	poolService := service.NewPoolService(questionRepo, problemRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())

	router.Register(app, cfg, router.Dependencies{
		ChallengeHandler:      handler.NewChallengeHandler(catalogService, selectionService, logger),
		QuizHandler:           handler.NewQuizHandler(quizService, logger),
		CodeHandler:           handler.NewCodeHandler(codeService, logger),
		FileChallengeHandler:  handler.NewFileChallengeHandler(fileChallengeService, logger),
		ArchiveHandler:        handler.NewArchiveHandler(archiveService, logger),
		ProgressHandler:       handler.NewProgressHandler(progressService, logger),
		AdminChallengeHandler: handler.NewAdminChallengeHandler(catalogService, poolService, logger),
		AdminFileHandler:      handler.NewAdminFileHandler(fileChallengeService, logger),
		AdminGradingHandler:   handler.NewAdminGradingHandler(gradingAdminService, archiveService, logger),
		RealtimeHandler:       handler.NewRealtimeHandler(hub, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
