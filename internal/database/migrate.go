package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate creates any missing tables and indexes. Every statement is
// idempotent, so it is safe to run on each start.
func (db *DB) Migrate(ctx context.Context) error {
	script, err := migrationFS.ReadFile("migrations/" + db.dialect + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read %s schema: %w", db.dialect, err)
	}

	for i, stmt := range splitStatements(string(script)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
