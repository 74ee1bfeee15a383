package server

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/menutext"
	"github.com/abhisek/menuquiz/internal/pdftext"
)

// uploadTokenCap bounds the text returned for an upload.
const uploadTokenCap = 60000

type cleaningStats struct {
	OriginalLength      int    `json:"original_length"`
	CleanedLength       int    `json:"cleaned_length"`
	ReductionPercentage int    `json:"reduction_percentage"`
	EstimatedTokens     int    `json:"estimated_tokens"`
	EssentialOnly       bool   `json:"essential_only"`
	Truncated           bool   `json:"truncated"`
	Preview             string `json:"preview"`
}

type uploadResponse struct {
	Text          string            `json:"text"`
	Pages         int               `json:"pages"`
	Language      string            `json:"language"`
	Info          map[string]string `json:"info"`
	CleaningStats cleaningStats     `json:"cleaning_stats"`
}

func (s *Server) uploadPDF(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
	}
	if fh.Header.Get(fiber.HeaderContentType) != "application/pdf" {
		return fiber.NewError(fiber.StatusBadRequest, "File must be a PDF")
	}
	if fh.Size > s.opts.MaxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit", s.opts.MaxUploadBytes))
	}

	ctx := c.UserContext()
	if err := s.uploads.Acquire(ctx, 1); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Server busy")
	}
	defer s.uploads.Release(1)

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	doc, err := pdftext.Extract(data)
	if err != nil {
		return err
	}

	prepared, err := s.preparer.Prepare(ctx, doc.Text)
	if err != nil {
		return err
	}
	text, truncated := menutext.Truncate(prepared.Text, uploadTokenCap*3, menutext.ContentTruncatedMarker)
	if truncated {
		s.log.Warn("upload text truncated", zap.String("file", fh.Filename), zap.Int("max_chars", uploadTokenCap*3))
	}

	original := utf8.RuneCountInString(doc.Text)
	cleaned := utf8.RuneCountInString(text)
	s.log.Info("pdf processed",
		zap.String("file", fh.Filename),
		zap.Int("pages", doc.PageCount),
		zap.Int("original_chars", original),
		zap.Int("cleaned_chars", cleaned))

	return c.JSON(success(uploadResponse{
		Text:     text,
		Pages:    doc.PageCount,
		Language: pdftext.DetectLanguage(doc.Text),
		Info:     doc.Metadata,
		CleaningStats: cleaningStats{
			OriginalLength:      original,
			CleanedLength:       cleaned,
			ReductionPercentage: percentDrop(original, cleaned),
			EstimatedTokens:     menutext.EstimateTokens(text),
			EssentialOnly:       prepared.Essential,
			Truncated:           truncated,
			Preview:             previewText(text, 500),
		},
	}))
}

type cleanTextRequest struct {
	Text             string `json:"text"`
	ExtractEssential bool   `json:"extractEssential"`
}

type textSummary struct {
	Text            string `json:"text"`
	Length          int    `json:"length"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

type reduction struct {
	Characters  int `json:"characters"`
	Percentage  int `json:"percentage"`
	TokensSaved int `json:"tokens_saved"`
}

type cleanTextResponse struct {
	Original  textSummary `json:"original"`
	Cleaned   textSummary `json:"cleaned"`
	Reduction reduction   `json:"reduction"`
}

func (s *Server) cleanText(c *fiber.Ctx) error {
	var req cleanTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	cleaned := menutext.Normalize(req.Text)
	if req.ExtractEssential {
		cleaned = menutext.ExtractEssential(cleaned)
	}

	orig := summarize(req.Text)
	out := summarize(cleaned)
	return c.JSON(success(cleanTextResponse{
		Original: orig,
		Cleaned:  out,
		Reduction: reduction{
			Characters:  orig.Length - out.Length,
			Percentage:  percentDrop(orig.Length, out.Length),
			TokensSaved: orig.EstimatedTokens - out.EstimatedTokens,
		},
	}))
}

func summarize(text string) textSummary {
	return textSummary{
		Text:            text,
		Length:          utf8.RuneCountInString(text),
		EstimatedTokens: menutext.EstimateTokens(text),
	}
}

func percentDrop(before, after int) int {
	if before == 0 {
		return 0
	}
	return int(math.Round(float64(before-after) / float64(before) * 100))
}

func previewText(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
