// Package recommend maps selected preference options to tags and tools.
package recommend

import (
	"github.com/benvon/toolhub/internal/catalog"
)

// Result is the output of Compute. Both slices are non-nil.
type Result struct {
	Tags    []string `json:"tags"`
	ToolIDs []string `json:"toolIds"`
}

// Engine computes recommendations against a fixed catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates an Engine over c.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Compute resolves the selected option ids, unions their tags and returns every
// tool with at least one overlapping tag. Unknown ids are ignored. Tags follow
// option declaration order and tools follow catalog order; each appears once.
// Membership is boolean, there is no ranking.
func (e *Engine) Compute(selected []string) Result {
	chosen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	res := Result{Tags: []string{}, ToolIDs: []string{}}
	tagSet := make(map[string]struct{})
	for _, opt := range e.catalog.Options() {
		if _, ok := chosen[opt.ID]; !ok {
			continue
		}
		for _, tag := range opt.Tags {
			if _, dup := tagSet[tag]; dup {
				continue
			}
			tagSet[tag] = struct{}{}
			res.Tags = append(res.Tags, tag)
		}
	}
	if len(tagSet) == 0 {
		return res
	}

	seen := make(map[string]struct{})
	for _, tool := range e.catalog.Tools() {
		if _, dup := seen[tool.ID]; dup {
			continue
		}
		if tool.HasAnyTag(tagSet) {
			seen[tool.ID] = struct{}{}
			res.ToolIDs = append(res.ToolIDs, tool.ID)
		}
	}
	return res
}

// KnownOptions filters ids down to options present in the catalog, keeping
// input order and dropping duplicates.
func (e *Engine) KnownOptions(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := e.catalog.Option(id); ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
