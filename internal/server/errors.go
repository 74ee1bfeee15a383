package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/llm"
	"github.com/abhisek/menuquiz/internal/pdftext"
	"github.com/abhisek/menuquiz/internal/quizgen"
)

// errorHandler maps errors returned by handlers to status codes:
// bad input is 400, a failing or incoherent model is 502.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var (
		inputErr   *quizgen.InputError
		upstream   *llm.UpstreamError
		unparsable *quizgen.UnparsableResponseError
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &inputErr):
		s.log.Warn("invalid request", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(failure(err.Error()))

	case errors.Is(err, pdftext.ErrNotPDF), errors.Is(err, pdftext.ErrNoText):
		return c.Status(fiber.StatusBadRequest).JSON(failure(err.Error()))

	case errors.As(err, &upstream):
		s.log.Error("model call failed", zap.String("path", c.Path()), zap.String("kind", string(upstream.Kind)), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(failure("Failed to generate questions: " + err.Error()))

	case errors.As(err, &unparsable):
		s.log.Error("model reply unparsable", zap.String("path", c.Path()), zap.String("preview", unparsable.Preview), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(failure("Failed to generate questions: " + err.Error()))

	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(failure(fiberErr.Message))
	}

	s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(failure("Internal server error"))
}
