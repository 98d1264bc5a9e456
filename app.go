package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartcontact/internal/config"
	"smartcontact/internal/database"
	"smartcontact/internal/handlers"
	"smartcontact/internal/middleware"
	"smartcontact/internal/repositories"
	"smartcontact/internal/services"
	"smartcontact/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires the HTTP server to its services and backing resources.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService

	cfg    *config.Config
	db     *gorm.DB         // nil with the memory driver
	mq     *rabbitmq.Client // nil when RabbitMQ is disabled or unreachable
	logger *zap.Logger
}

// NewApp builds the repository, services, handlers and routes for cfg.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: log}

	// --- Repository ---
	var repo repositories.UserRepository
	if cfg.DatabaseDriver == config.DriverMemory {
		repo = repositories.NewMemoryUserRepository()
	} else {
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		repo = repositories.NewGORMUserRepository(db)
	}
	log.Info("user store ready", zap.String("driver", cfg.DatabaseDriver))

	// --- Event publisher ---
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			// events are best effort, the API keeps working without them
			log.Warn("RabbitMQ unavailable, user events disabled", zap.Error(err))
		} else {
			a.mq = mq
			publisher = mq
		}
	}

	// --- Services ---
	userService := services.NewUserService(repo, services.NewBcryptHasher(cfg.BcryptCost), publisher, log)
	a.AuthService = services.NewAuthService(cfg.JWTSecret, cfg.JWTTTL, log)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, log)
	authHandler := handlers.NewAuthHandler(userService, a.AuthService, log)

	// --- Fiber ---
	a.Fiber = fiber.New(fiber.Config{
		AppName:      "smartcontact",
		UnescapePath: true,
		ErrorHandler: errorHandler(log),
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	a.Fiber.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	a.Fiber.Get("/health", a.handleHealth)

	users := a.Fiber.Group("/api/users")
	userHandler.RegisterRoutes(users)
	authHandler.RegisterRoutes(users, middleware.AuthRequired(a.AuthService, log))

	return a, nil
}

// StartConsumer logs every user event delivered on the event queue. It is a
// no-op without a RabbitMQ connection.
func (a *App) StartConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeUserEvents(rabbitmq.LogUserEvent(a.logger))
}

// Listen serves HTTP on the configured port until Shutdown is called.
func (a *App) Listen() error {
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and releases the broker and database.
func (a *App) Shutdown(timeout time.Duration) error {
	var errs []error
	if err := a.Fiber.ShutdownWithTimeout(timeout); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if err := a.mq.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": a.cfg.DatabaseDriver,
		"rabbitmq": "disabled",
	}
	if a.mq != nil {
		status["rabbitmq"] = "connected"
		status["rabbitmq_queue"] = a.mq.Queue()
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "unhealthy"
			status["error"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
	}
	return c.JSON(status)
}

// errorHandler renders errors that escape the handlers, including unknown
// routes and recovered panics, in the same JSON shape the handlers use.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error",
				zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
			"success": false,
		})
	}
}
