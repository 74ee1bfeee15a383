// Package catalog holds the static role, area and category definitions that
// scope question generation, along with the supported question types,
// difficulty levels and languages.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultData []byte

//go:embed schema.json
var schemaData []byte

// supportedMajor is the catalog format this build understands.
const supportedMajor = "v1"

// DefaultLanguage is used when a caller does not name one.
const DefaultLanguage = "es"

var (
	ErrUnknownRole  = errors.New("unknown role")
	ErrAreaRequired = errors.New("area is required")
	ErrUnknownArea  = errors.New("unknown area")
	ErrNoCategories = errors.New("no valid categories for role")
)

// Entry is an identifier with a human-readable name.
type Entry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Area is a sub-specialization of a role with its own category set.
type Area struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Categories  []Entry `yaml:"categories" json:"categories"`
}

// Role is a job function whose categories scope the generated questions.
// A role has either its own categories or a set of areas, never both.
type Role struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Categories  []Entry `yaml:"categories,omitempty" json:"categories,omitempty"`
	Areas       []Area  `yaml:"areas,omitempty" json:"areas,omitempty"`

	// AreaFocus holds extra prompt instructions, keyed by language, that
	// apply when the role is generated for a specific area.
	AreaFocus map[string]string `yaml:"area_focus,omitempty" json:"-"`
}

// HasAreas reports whether the role is split into areas.
func (r Role) HasAreas() bool {
	return len(r.Areas) > 0
}

// Area returns the area with the given ID.
func (r Role) Area(id string) (Area, bool) {
	for _, a := range r.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// AreaIDs lists the role's area identifiers in catalog order.
func (r Role) AreaIDs() []string {
	ids := make([]string, len(r.Areas))
	for i, a := range r.Areas {
		ids[i] = a.ID
	}
	return ids
}

// FocusFor returns the area focus text for lang, falling back to the
// default language. Empty when the role has no focus hook.
func (r Role) FocusFor(lang string) string {
	if s, ok := r.AreaFocus[lang]; ok {
		return s
	}
	return r.AreaFocus[DefaultLanguage]
}

// Catalog is the full set of definitions.
type Catalog struct {
	Version          string  `yaml:"version" json:"version"`
	Roles            []Role  `yaml:"roles" json:"roles"`
	QuestionTypes    []Entry `yaml:"question_types" json:"question_types"`
	DifficultyLevels []Entry `yaml:"difficulty_levels" json:"difficulty_levels"`
	Languages        []Entry `yaml:"languages" json:"supported_languages"`
}

// Selection is the outcome of resolving a role, optional area and
// requested categories against the catalog.
type Selection struct {
	Role       Role
	Area       *Area
	Categories []Entry
}

// CategoryIDs returns the selected category identifiers in order.
func (s Selection) CategoryIDs() []string {
	ids := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		ids[i] = c.ID
	}
	return ids
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog embedded in the binary. It panics if the
// embedded data is invalid, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(defaultData)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded roles.yaml: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses and validates a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var c Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse catalog: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if !semver.IsValid(c.Version) {
		return nil, fmt.Errorf("catalog version %q is not a valid semantic version", c.Version)
	}
	if semver.Major(c.Version) != supportedMajor {
		return nil, fmt.Errorf("catalog version %s is not supported (want %s.x)", c.Version, supportedMajor)
	}

	if err := c.checkUnique(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validateDocument checks the raw document against the embedded JSON
// schema. YAML is decoded to a generic value and round-tripped through
// JSON so the validator sees plain JSON types.
func validateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert catalog to JSON: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("convert catalog to JSON: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaData, &def); err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://catalog.json"
		if err := c.AddResource(url, def); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(url)
	})
	return schema, schemaErr
}

func (c *Catalog) checkUnique() error {
	roles := make(map[string]bool, len(c.Roles))
	for _, r := range c.Roles {
		if roles[r.ID] {
			return fmt.Errorf("duplicate role %q", r.ID)
		}
		roles[r.ID] = true

		areas := make(map[string]bool, len(r.Areas))
		for _, a := range r.Areas {
			if areas[a.ID] {
				return fmt.Errorf("role %q: duplicate area %q", r.ID, a.ID)
			}
			areas[a.ID] = true
		}
	}
	return nil
}

// RoleIDs lists role identifiers in catalog order.
func (c *Catalog) RoleIDs() []string {
	ids := make([]string, len(c.Roles))
	for i, r := range c.Roles {
		ids[i] = r.ID
	}
	return ids
}

// Role looks up a role by ID.
func (c *Catalog) Role(id string) (Role, error) {
	for _, r := range c.Roles {
		if r.ID == id {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownRole, id, strings.Join(c.RoleIDs(), ", "))
}

// SupportsLanguage reports whether code is one of the catalog's languages.
func (c *Catalog) SupportsLanguage(code string) bool {
	return hasEntry(c.Languages, code)
}

// IsQuestionType reports whether id names a known question type.
func (c *Catalog) IsQuestionType(id string) bool {
	return hasEntry(c.QuestionTypes, id)
}

// IsDifficulty reports whether id names a known difficulty level.
func (c *Catalog) IsDifficulty(id string) bool {
	return hasEntry(c.DifficultyLevels, id)
}

// Resolve validates the role and area and narrows requested to the
// categories the role (or its area) offers. An empty requested list selects
// every category. Requested categories keep their given order; unknown ones
// are dropped. The area is ignored for roles without areas.
func (c *Catalog) Resolve(roleID, areaID string, requested []string) (Selection, error) {
	role, err := c.Role(roleID)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Role: role}
	available := role.Categories

	if role.HasAreas() {
		if areaID == "" {
			return Selection{}, fmt.Errorf("%w for %s (available areas: %s)",
				ErrAreaRequired, role.ID, strings.Join(role.AreaIDs(), ", "))
		}
		area, ok := role.Area(areaID)
		if !ok {
			return Selection{}, fmt.Errorf("%w %q for %s (available areas: %s)",
				ErrUnknownArea, areaID, role.ID, strings.Join(role.AreaIDs(), ", "))
		}
		sel.Area = &area
		available = area.Categories
	}

	if len(requested) == 0 {
		sel.Categories = append([]Entry(nil), available...)
		return sel, nil
	}

	for _, id := range requested {
		for _, cat := range available {
			if cat.ID == id && !hasEntry(sel.Categories, id) {
				sel.Categories = append(sel.Categories, cat)
			}
		}
	}
	if len(sel.Categories) == 0 {
		return Selection{}, fmt.Errorf("%w %s", ErrNoCategories, role.ID)
	}
	return sel, nil
}

func hasEntry(entries []Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
