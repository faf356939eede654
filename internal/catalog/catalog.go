// Package catalog holds the static registry of tools and preference options.
// A Catalog is built once at startup and is read-only afterwards, so it is
// safe for concurrent use.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Tool is a launchable third-party AI tool. Category is derived from the
// enclosing category group and is not read from the source document.
type Tool struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Subtitle    string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Href        string   `yaml:"href" json:"href"`
	Logo        string   `yaml:"logo,omitempty" json:"logo,omitempty"`
	IsNew       bool     `yaml:"isNew,omitempty" json:"isNew,omitempty"`
	Coins       int      `yaml:"coins" json:"coins"`
	Category    string   `yaml:"-" json:"category"`
}

// HasAnyTag reports whether the tool carries at least one tag in set.
func (t Tool) HasAnyTag(set map[string]struct{}) bool {
	for _, tag := range t.Tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// Category groups tools. Declaration order is significant.
type Category struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Tools []Tool `yaml:"tools" json:"tools"`
}

// PreferenceOption is a selectable interest bucket mapping to one or more tags.
type PreferenceOption struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Icon        string   `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Catalog is the indexed, immutable view over categories and options.
type Catalog struct {
	categories  []Category
	options     []PreferenceOption
	tools       []Tool
	toolsByID   map[string]Tool
	optionsByID map[string]PreferenceOption
}

// New validates the given categories and options and indexes them.
// A tool id may appear in several categories; lookups resolve to the first occurrence.
func New(categories []Category, options []PreferenceOption) (*Catalog, error) {
	c := &Catalog{
		categories:  make([]Category, 0, len(categories)),
		options:     slices.Clone(options),
		toolsByID:   make(map[string]Tool),
		optionsByID: make(map[string]PreferenceOption, len(options)),
	}

	seenCategories := make(map[string]struct{}, len(categories))
	for ci, cat := range categories {
		if cat.ID == "" || cat.Title == "" {
			return nil, fmt.Errorf("category %d: id and title are required", ci)
		}
		if _, dup := seenCategories[cat.ID]; dup {
			return nil, fmt.Errorf("category %q: duplicate id", cat.ID)
		}
		seenCategories[cat.ID] = struct{}{}

		tools := make([]Tool, 0, len(cat.Tools))
		for ti, tool := range cat.Tools {
			if err := validateTool(tool); err != nil {
				return nil, fmt.Errorf("category %q tool %d: %w", cat.ID, ti, err)
			}
			tool.Tags = slices.Clone(tool.Tags)
			tool.Category = cat.Title
			tools = append(tools, tool)
			c.tools = append(c.tools, tool)
			if _, exists := c.toolsByID[tool.ID]; !exists {
				c.toolsByID[tool.ID] = tool
			}
		}
		c.categories = append(c.categories, Category{ID: cat.ID, Title: cat.Title, Tools: tools})
	}

	for i, opt := range c.options {
		if opt.ID == "" || opt.Title == "" {
			return nil, fmt.Errorf("preference option %d: id and title are required", i)
		}
		if len(opt.Tags) == 0 {
			return nil, fmt.Errorf("preference option %q: at least one tag is required", opt.ID)
		}
		if _, dup := c.optionsByID[opt.ID]; dup {
			return nil, fmt.Errorf("preference option %q: duplicate id", opt.ID)
		}
		c.optionsByID[opt.ID] = opt
	}

	return c, nil
}

func validateTool(tool Tool) error {
	switch {
	case tool.ID == "":
		return fmt.Errorf("id is required")
	case tool.Title == "":
		return fmt.Errorf("tool %q: title is required", tool.ID)
	case tool.Href == "":
		return fmt.Errorf("tool %q: href is required", tool.ID)
	case tool.Coins < 0:
		return fmt.Errorf("tool %q: coins must not be negative", tool.ID)
	}
	return nil
}

// Tools returns every tool occurrence in category order, then declaration order.
func (c *Catalog) Tools() []Tool {
	return slices.Clone(c.tools)
}

// Categories returns the category groups in declaration order.
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Options returns the preference options in declaration order.
func (c *Catalog) Options() []PreferenceOption {
	return slices.Clone(c.options)
}

// Lookup resolves a tool by id.
func (c *Catalog) Lookup(id string) (Tool, bool) {
	tool, ok := c.toolsByID[id]
	return tool, ok
}

// Has reports whether id names a catalog tool.
func (c *Catalog) Has(id string) bool {
	_, ok := c.toolsByID[id]
	return ok
}

// Option resolves a preference option by id.
func (c *Catalog) Option(id string) (PreferenceOption, bool) {
	opt, ok := c.optionsByID[id]
	return opt, ok
}

// Len returns the number of distinct tool ids.
func (c *Catalog) Len() int {
	return len(c.toolsByID)
}

// Query narrows Filter results. Zero values match everything.
type Query struct {
	// Category matches the category title or any tag, case-insensitively.
	Category string
	// Search matches title, subtitle, description or any tag, case-insensitively.
	Search string
	// NewOnly keeps tools flagged isNew.
	NewOnly bool
}

// Filter returns the tools matching q in catalog order, one entry per id.
func (c *Catalog) Filter(q Query) []Tool {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	seen := make(map[string]struct{}, len(c.toolsByID))
	out := make([]Tool, 0)
	for _, tool := range c.tools {
		if _, dup := seen[tool.ID]; dup {
			continue
		}
		if q.NewOnly && !tool.IsNew {
			continue
		}
		if category != "" && !matchesCategory(tool, category) {
			continue
		}
		if search != "" && !matchesSearch(tool, search) {
			continue
		}
		seen[tool.ID] = struct{}{}
		out = append(out, tool)
	}
	return out
}

// NewTools returns the tools flagged isNew, one entry per id.
func (c *Catalog) NewTools() []Tool {
	return c.Filter(Query{NewOnly: true})
}

func matchesCategory(tool Tool, term string) bool {
	if strings.Contains(strings.ToLower(tool.Category), term) {
		return true
	}
	return anyTagContains(tool.Tags, term)
}

func matchesSearch(tool Tool, term string) bool {
	for _, field := range []string{tool.Title, tool.Subtitle, tool.Description} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return anyTagContains(tool.Tags, term)
}

func anyTagContains(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
