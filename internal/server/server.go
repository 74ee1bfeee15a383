// Package server exposes question generation and menu text tooling over
// HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/abhisek/menuquiz/internal/catalog"
	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/quizgen"
	"github.com/abhisek/menuquiz/internal/store"
)

// Generator is the question generation service.
type Generator interface {
	Generate(ctx context.Context, req quizgen.Request) (*quizgen.Result, error)
	Config() quizgen.Config
}

// UsageReader aggregates recorded LLM calls.
type UsageReader interface {
	LLMUsageByPurpose(ctx context.Context) ([]store.UsageStat, error)
	LLMUsageByModel(ctx context.Context) ([]store.UsageStat, error)
}

// Options configures a Server. Catalog and Generator are required.
type Options struct {
	Catalog   *catalog.Catalog
	Generator Generator

	// Preparer cleans uploaded PDF text. Defaults to quizgen.LocalPreparer.
	Preparer quizgen.Preparer

	// Usage may be nil, in which case stats omit usage.
	Usage UsageReader

	Env               string
	Version           string
	MaxUploadBytes    int64
	UploadConcurrency int64

	// AllowAllOrigins enables CORS for any origin.
	AllowAllOrigins bool

	Log *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	app      *fiber.App
	catalog  *catalog.Catalog
	gen      Generator
	preparer quizgen.Preparer
	usage    UsageReader
	uploads  *semaphore.Weighted
	opts     Options
	log      *zap.Logger
	started  time.Time
}

// New builds the server and registers its routes.
func New(opts Options) *Server {
	if opts.Preparer == nil {
		opts.Preparer = quizgen.LocalPreparer
	}
	if opts.Log == nil {
		opts.Log = logger.Get()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = 4
	}

	s := &Server{
		catalog:  opts.Catalog,
		gen:      opts.Generator,
		preparer: opts.Preparer,
		usage:    opts.Usage,
		uploads:  semaphore.NewWeighted(opts.UploadConcurrency),
		opts:     opts,
		log:      opts.Log,
		started:  time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "menuquiz",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		// Batch runs of 200 questions take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  time.Minute,
		BodyLimit:    int(opts.MaxUploadBytes) + 1<<20,
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	if opts.AllowAllOrigins {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       300,
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.index)

	api := s.app.Group("/api")
	api.Get("/health", s.health)

	api.Get("/roles", s.listRoles)
	api.Get("/roles/:role", s.getRole)

	questions := api.Group("/questions")
	questions.Post("/generate", s.generate)
	questions.Get("/stats", s.stats)

	pdf := api.Group("/pdf")
	pdf.Post("/upload", s.uploadPDF)
	pdf.Post("/clean-text", s.cleanText)

	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(failure("Endpoint not found"))
	})
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("server listening", zap.String("addr", addr), zap.String("env", s.opts.Env))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			status = fiber.StatusInternalServerError
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		s.log.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()))
		return err
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func success(data any) envelope {
	return envelope{Success: true, Data: data}
}

func failure(msg string) envelope {
	return envelope{Error: msg}
}
