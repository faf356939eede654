package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/benvon/toolhub/internal/models"
)

// newTestDB opens a migrated SQLite database private to the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := New(ctx, DialectSQLite, filepath.Join(t.TempDir(), "toolhub.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *DB, providerID string) *models.User {
	t.Helper()

	user := &models.User{ProviderID: providerID, Email: providerID + "@example.com"}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("expected user id to be assigned")
	}
	return user
}
