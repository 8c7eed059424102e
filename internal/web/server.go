package web

import (
	"context"
	"errors"
	"time"

	"github.com/forPelevin/ytnotes/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Service is the part of the use case the web layer drives.
type Service interface {
	Preview(raw string) (types.Notes, error)
	Notes(ctx context.Context, raw string) (types.Notes, error)
}

type Handler struct {
	svc      Service
	log      logrus.FieldLogger
	validate *validator.Validate
}

func NewHandler(svc Service, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log, validate: validator.New()}
}

// New builds the fiber app with all routes registered.
func New(svc Service, log logrus.FieldLogger) *fiber.App {
	h := NewHandler(svc, log)

	app := fiber.New(fiber.Config{
		AppName:               "ytnotes",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "ytnotes is healthy",
		})
	})

	app.Get("/", h.Index)
	app.Post("/notes", h.NotesPage)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/preview", h.PreviewAPI)
	apiV1.Post("/notes", h.NotesAPI)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return respondWithError(c, code, err.Error())
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
