package quizgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/menuquiz/internal/catalog"
)

func TestResolveRequest(t *testing.T) {
	cat := catalog.Default()
	cfg := DefaultConfig()

	req, err := ResolveRequest(cat, cfg, GenerateParams{
		MenuText:   sampleMenu,
		Role:       "cocinero_especializado",
		Area:       "poste_pizza",
		Categories: []string{"gramajes_pizza", "bogus", "procesos_pizza"},
	})
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if req.Count != 20 || req.Language != "es" {
		t.Errorf("defaults: count=%d language=%q", req.Count, req.Language)
	}
	if req.Area == nil || req.Area.ID != "poste_pizza" {
		t.Errorf("area = %+v", req.Area)
	}
	if strings.Join(req.Categories, ",") != "gramajes_pizza,procesos_pizza" {
		t.Errorf("categories = %v", req.Categories)
	}

	req, err = ResolveRequest(cat, cfg, GenerateParams{
		MenuText:      sampleMenu,
		Role:          "garzon",
		Area:          "poste_pizza",
		Language:      "fr",
		QuestionCount: 200,
		QuestionTypes: []string{"yes_no"},
		Difficulty:    "dificil",
	})
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if req.Area != nil {
		t.Error("area must be ignored for flat roles")
	}
	if len(req.Categories) != 3 {
		t.Errorf("empty request should select every category, got %v", req.Categories)
	}
	if len(req.QuestionTypes) != 1 || req.QuestionTypes[0] != TypeYesNo || req.Difficulty != DifficultyHard {
		t.Errorf("filters = %v, %q", req.QuestionTypes, req.Difficulty)
	}
}

func TestResolveRequest_Invalid(t *testing.T) {
	base := GenerateParams{MenuText: sampleMenu, Role: "garzon"}

	tests := []struct {
		name  string
		edit  func(*GenerateParams)
		field string
		cause error
	}{
		{"short menu", func(p *GenerateParams) { p.MenuText = "   pizza  " }, "menuText", nil},
		{"count too low", func(p *GenerateParams) { p.QuestionCount = 9 }, "questionCount", nil},
		{"count too high", func(p *GenerateParams) { p.QuestionCount = 201 }, "questionCount", nil},
		{"language", func(p *GenerateParams) { p.Language = "de" }, "language", nil},
		{"missing role", func(p *GenerateParams) { p.Role = "" }, "role", nil},
		{"unknown role", func(p *GenerateParams) { p.Role = "sommelier" }, "role", catalog.ErrUnknownRole},
		{"missing area", func(p *GenerateParams) { p.Role = "cocinero_especializado" }, "area", catalog.ErrAreaRequired},
		{"unknown area", func(p *GenerateParams) { p.Role, p.Area = "cocinero_especializado", "poste_bar" }, "area", catalog.ErrUnknownArea},
		{"no categories left", func(p *GenerateParams) { p.Categories = []string{"bogus"} }, "categories", catalog.ErrNoCategories},
		{"question type", func(p *GenerateParams) { p.QuestionTypes = []string{"essay"} }, "questionTypes", nil},
		{"difficulty", func(p *GenerateParams) { p.Difficulty = "extreme" }, "difficulty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.edit(&p)
			_, err := ResolveRequest(catalog.Default(), DefaultConfig(), p)

			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want *InputError", err)
			}
			if ie.Field != tt.field {
				t.Errorf("field = %q, want %q", ie.Field, tt.field)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("err = %v, want cause %v", err, tt.cause)
			}
		})
	}
}
