package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New(
		[]Category{
			{ID: "gen", Title: "AI generation", Tools: []Tool{
				{ID: "painter", Title: "Painter", Description: "Paints pictures", Tags: []string{"design", "creative"}, Href: "/painter", Coins: 2},
				{ID: "scribe", Title: "Scribe", Subtitle: "Drafts", Description: "Writes copy", Tags: []string{"writing"}, Href: "/scribe", IsNew: true},
			}},
			{ID: "audio", Title: "Audio and voiceover", Tools: []Tool{
				{ID: "narrator", Title: "Narrator", Description: "Reads text aloud", Tags: []string{"audio"}, Href: "/narrator", IsNew: true},
				{ID: "painter", Title: "Painter", Description: "Paints pictures", Tags: []string{"design", "creative"}, Href: "/painter", Coins: 2},
			}},
		},
		[]PreferenceOption{
			{ID: "design", Title: "Design", Tags: []string{"design", "creative"}},
			{ID: "writing", Title: "Writing", Tags: []string{"writing"}},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func toolIDs(tools []Tool) []string {
	ids := make([]string, 0, len(tools))
	for _, tool := range tools {
		ids = append(ids, tool.ID)
	}
	return ids
}

func TestCatalogLookup(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	tool, ok := c.Lookup("painter")
	if !ok {
		t.Fatal("expected painter to resolve")
	}
	if tool.Category != "AI generation" {
		t.Errorf("first occurrence should win, got category %q", tool.Category)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("expected unknown id to miss")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCatalogToolsKeepsEveryOccurrence(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	want := []string{"painter", "scribe", "narrator", "painter"}
	if diff := cmp.Diff(want, toolIDs(c.Tools())); diff != "" {
		t.Errorf("Tools() mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	tools := c.Tools()
	tools[0].ID = "mutated"

	if got := c.Tools()[0].ID; got != "painter" {
		t.Errorf("Tools() exposed internal slice, got %q", got)
	}
}

func TestCatalogFilter(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "no filter dedupes", query: Query{}, want: []string{"painter", "scribe", "narrator"}},
		{name: "category title", query: Query{Category: "audio"}, want: []string{"narrator", "painter"}},
		{name: "category matches tag", query: Query{Category: "WRITING"}, want: []string{"scribe"}},
		{name: "search description", query: Query{Search: "aloud"}, want: []string{"narrator"}},
		{name: "search subtitle", query: Query{Search: "drafts"}, want: []string{"scribe"}},
		{name: "new only", query: Query{NewOnly: true}, want: []string{"scribe", "narrator"}},
		{name: "combined", query: Query{Category: "generation", Search: "paint"}, want: []string{"painter"}},
		{name: "no match", query: Query{Search: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, toolIDs(c.Filter(tt.query))); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		categories []Category
		options    []PreferenceOption
		wantErr    string
	}{
		{
			name:       "missing tool href",
			categories: []Category{{ID: "a", Title: "A", Tools: []Tool{{ID: "t", Title: "T"}}}},
			wantErr:    "href is required",
		},
		{
			name:       "negative coins",
			categories: []Category{{ID: "a", Title: "A", Tools: []Tool{{ID: "t", Title: "T", Href: "/t", Coins: -1}}}},
			wantErr:    "coins must not be negative",
		},
		{
			name:       "duplicate category",
			categories: []Category{{ID: "a", Title: "A"}, {ID: "a", Title: "B"}},
			wantErr:    "duplicate id",
		},
		{
			name:    "duplicate option",
			options: []PreferenceOption{{ID: "o", Title: "O", Tags: []string{"x"}}, {ID: "o", Title: "P", Tags: []string{"y"}}},
			wantErr: "duplicate id",
		},
		{
			name:    "option without tags",
			options: []PreferenceOption{{ID: "o", Title: "O"}},
			wantErr: "at least one tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.categories, tt.options)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(c.Options()) == 0 {
		t.Fatal("expected built-in preference options")
	}
	if _, ok := c.Option("design"); !ok {
		t.Error("expected built-in design option")
	}
	for _, tool := range c.Tools() {
		if tool.Category == "" {
			t.Errorf("tool %q has no derived category", tool.ID)
		}
	}
	if len(c.NewTools()) == 0 {
		t.Error("expected at least one new tool in the built-in catalog")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Load(strings.NewReader("categories:\n  - id: a\n    title: A\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestFromPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `preferenceOptions:
  - id: audio
    title: Audio
    tags: [audio]
categories:
  - id: sound
    title: Sound
    tools:
      - id: mixer
        title: Mixer
        description: Mixes tracks
        tags: [audio]
        href: /mixer
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath() error = %v", err)
	}
	tool, ok := c.Lookup("mixer")
	if !ok {
		t.Fatal("expected mixer tool")
	}
	if tool.Category != "Sound" {
		t.Errorf("Category = %q, want Sound", tool.Category)
	}

	if _, err := FromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
