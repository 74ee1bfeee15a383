package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/menuquiz/internal/catalog"
)

type rolesResponse struct {
	Roles              []catalog.Role  `json:"roles"`
	QuestionTypes      []catalog.Entry `json:"question_types"`
	DifficultyLevels   []catalog.Entry `json:"difficulty_levels"`
	SupportedLanguages []catalog.Entry `json:"supported_languages"`
}

type roleDetail struct {
	Role       catalog.Role    `json:"role"`
	Area       *catalog.Area   `json:"area,omitempty"`
	Categories []catalog.Entry `json:"categories"`
}

// listRoles returns the whole catalog, or one role when ?role= is given.
func (s *Server) listRoles(c *fiber.Ctx) error {
	if id := c.Query("role"); id != "" {
		return s.roleDetail(c, id, c.Query("area"))
	}
	return c.JSON(success(rolesResponse{
		Roles:              s.catalog.Roles,
		QuestionTypes:      s.catalog.QuestionTypes,
		DifficultyLevels:   s.catalog.DifficultyLevels,
		SupportedLanguages: s.catalog.Languages,
	}))
}

func (s *Server) getRole(c *fiber.Ctx) error {
	return s.roleDetail(c, c.Params("role"), c.Query("area"))
}

func (s *Server) roleDetail(c *fiber.Ctx, roleID, areaID string) error {
	role, err := s.catalog.Role(roleID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	// Without an area, a role split into areas is described by the role
	// alone so callers can pick one.
	if areaID == "" && role.HasAreas() {
		return c.JSON(success(roleDetail{Role: role, Categories: []catalog.Entry{}}))
	}

	sel, err := s.catalog.Resolve(roleID, areaID, nil)
	switch {
	case errors.Is(err, catalog.ErrUnknownArea):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(success(roleDetail{Role: role, Area: sel.Area, Categories: sel.Categories}))
}
