package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/praxislab/praxis-api/internal/config"
	"github.com/praxislab/praxis-api/internal/handler"
	"github.com/praxislab/praxis-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ChallengeHandler      *handler.ChallengeHandler
	QuizHandler           *handler.QuizHandler
	CodeHandler           *handler.CodeHandler
	FileChallengeHandler  *handler.FileChallengeHandler
	ArchiveHandler        *handler.ArchiveHandler
	ProgressHandler       *handler.ProgressHandler
	AdminChallengeHandler *handler.AdminChallengeHandler
	AdminFileHandler      *handler.AdminFileHandler
	AdminGradingHandler   *handler.AdminGradingHandler
	RealtimeHandler       *handler.RealtimeHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Student-facing challenge routes. Registration order matters: the
	// engines bind routes under /:challengeId before the catalog's
	// catch-all GET /:challengeId. Rate limited because the code engine
	// spins up a container per request.
	challenges := app.Group("/api/v1/challenges", jwtMiddleware, middleware.RateLimit("challenges", 60, time.Minute))
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(challenges)
	}
	if deps.CodeHandler != nil {
		deps.CodeHandler.Register(challenges)
	}
	if deps.FileChallengeHandler != nil {
		deps.FileChallengeHandler.Register(challenges)
	}
	if deps.ChallengeHandler != nil {
		deps.ChallengeHandler.Register(challenges)
	}

	// Legacy per-assignment archive submissions.
	if deps.ArchiveHandler != nil {
		assignments := app.Group("/api/v1/assignments", jwtMiddleware)
		deps.ArchiveHandler.Register(assignments)
	}

	// Progress views.
	if deps.ProgressHandler != nil {
		progress := app.Group("/api/v1/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	// Admin surface.
	admin := app.Group("/api/v1/admin", jwtMiddleware, middleware.RequireStaff())
	if deps.AdminChallengeHandler != nil {
		deps.AdminChallengeHandler.Register(admin)
	}
	if deps.AdminFileHandler != nil {
		deps.AdminFileHandler.Register(admin)
	}
	if deps.AdminGradingHandler != nil {
		deps.AdminGradingHandler.Register(admin)
	}
	if deps.ProgressHandler != nil {
		deps.ProgressHandler.RegisterAdmin(admin)
	}

	// Realtime subscriptions.
	if deps.RealtimeHandler != nil {
		realtimeGroup := app.Group("/api/v1/realtime", jwtMiddleware)
		deps.RealtimeHandler.Register(realtimeGroup)
	}
}
