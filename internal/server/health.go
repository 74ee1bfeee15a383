package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(s.started).Seconds(),
		Environment: s.opts.Env,
		Version:     s.opts.Version,
	})
}

func (s *Server) index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "menuquiz",
		"version": s.opts.Version,
		"endpoints": fiber.Map{
			"health":     "GET /api/health",
			"roles":      "GET /api/roles",
			"role":       "GET /api/roles/:role",
			"generate":   "POST /api/questions/generate",
			"stats":      "GET /api/questions/stats",
			"upload":     "POST /api/pdf/upload",
			"clean_text": "POST /api/pdf/clean-text",
		},
	})
}
