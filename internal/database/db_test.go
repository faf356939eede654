package database

import (
	"context"
	"errors"
	"testing"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect string
		query   string
		want    string
	}{
		{name: "postgres untouched", dialect: DialectPostgres, query: "SELECT $1, $2", want: "SELECT $1, $2"},
		{name: "sqlite numbered", dialect: DialectSQLite, query: "SELECT $1, $12", want: "SELECT ?1, ?12"},
		{name: "sqlite literal kept", dialect: DialectSQLite, query: "SELECT '$1' WHERE a = $1", want: "SELECT '$1' WHERE a = ?1"},
		{name: "sqlite bare dollar", dialect: DialectSQLite, query: "SELECT '$' || $1", want: "SELECT '$' || ?1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rebind(tt.dialect, tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), "mysql", "dsn"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ratelimit_config (config_key, rate) VALUES ($1, $2)`, "default", "5-S"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTx() error = %v, want %v", err, sentinel)
	}

	if _, err := NewRatelimitConfigRepository(db).Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected rolled back row to be absent, got err = %v", err)
	}
}
