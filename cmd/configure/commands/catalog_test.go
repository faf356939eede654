package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalogYAML = `
preferenceOptions:
  - id: design
    title: Design
    tags: [design, creative]
  - id: juggling
    title: Juggling
    tags: [circus]
categories:
  - id: gen
    title: AI generation
    tools:
      - id: painter
        title: Painter
        description: Paints pictures
        tags: [design]
        href: /painter
        coins: 2
      - id: scribe
        title: Scribe
        description: Writes copy
        tags: [writing]
        href: /scribe
        coins: 1
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		wantErr      bool
		wantContains []string
	}{
		{
			name:    "valid catalog with a dead option",
			content: testCatalogYAML,
			wantContains: []string{
				"Tools: 2",
				"Preference options: 2",
				`Warning: option "juggling" matches no tools`,
			},
		},
		{
			name:    "unknown field is rejected",
			content: "categories: []\nunexpected: true\n",
			wantErr: true,
		},
		{
			name:    "tool without href",
			content: "categories:\n  - id: gen\n    title: Gen\n    tools:\n      - id: x\n        title: X\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := runRoot(t, "catalog", "validate", "--path", writeCatalog(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate error = %v, wantErr %v (output %q)", err, tt.wantErr, out)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output %q does not contain %q", out, want)
				}
			}
		})
	}
}

func TestCatalogRecommend(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, testCatalogYAML)
	out, err := runRoot(t, "catalog", "recommend", "--path", path, "--option", "design,unknown")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}

	for _, want := range []string{
		"Ignoring unknown options: unknown",
		"Tags: design, creative",
		"Tools (1):",
		"- painter (Painter)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
	if strings.Contains(out, "scribe") {
		t.Errorf("output %q should not recommend scribe", out)
	}
}

func TestCatalogValidateBuiltIn(t *testing.T) {
	t.Parallel()

	out, err := runRoot(t, "catalog", "validate", "--path", "")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "(built-in) is valid") {
		t.Errorf("output %q does not mention the built-in catalog", out)
	}
}

func TestRatelimitSetRejectsBadRate(t *testing.T) {
	t.Parallel()

	_, err := runRoot(t, "ratelimit", "set", "--rate", "lots")
	if err == nil || !strings.Contains(err.Error(), "invalid --rate") {
		t.Errorf("expected invalid rate error, got %v", err)
	}
}

func TestOIDCRequiresAbsoluteURLs(t *testing.T) {
	t.Parallel()

	_, err := runRoot(t, "oidc", "cognito", "--issuer", "not-a-url", "--client-id", "c", "--redirect-uri", "https://app.example.com/cb")
	if err == nil || !strings.Contains(err.Error(), "--issuer must be an absolute URL") {
		t.Errorf("expected issuer URL error, got %v", err)
	}
}
