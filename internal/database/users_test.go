package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/benvon/toolhub/internal/models"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	name := "Ada"
	user := &models.User{ProviderID: "user_123", Email: "ada@example.com", Username: &name}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.PurchasedCoins != models.DefaultPurchasedCoins {
		t.Errorf("PurchasedCoins = %d, want %d", user.PurchasedCoins, models.DefaultPurchasedCoins)
	}

	got, err := repo.GetByProviderID(ctx, "user_123")
	if err != nil {
		t.Fatalf("GetByProviderID() error = %v", err)
	}
	if got.ID != user.ID || got.Email != "ada@example.com" {
		t.Errorf("GetByProviderID() = %+v", got)
	}
	if got.Username == nil || *got.Username != "Ada" {
		t.Errorf("Username = %v, want Ada", got.Username)
	}
	if got.Image != nil {
		t.Errorf("Image = %v, want nil", got.Image)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.ProviderID != "user_123" {
		t.Errorf("GetByID().ProviderID = %q", byID.ProviderID)
	}
}

func TestUserRepositoryCreateSameProviderReturnsExisting(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := createTestUser(t, db, "user_dup")
	second := &models.User{ProviderID: "user_dup", Email: "other@example.com"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Create() id = %s, want existing %s", second.ID, first.ID)
	}
	if second.Email != first.Email {
		t.Errorf("existing email should be kept, got %q", second.Email)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByProviderID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByProviderID() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &models.User{ID: uuid.New(), Email: "x@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "user_upd")
	image := "https://img.example.com/a.png"
	user.Email = "new@example.com"
	user.Image = &image
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.Image == nil || *got.Image != image {
		t.Errorf("Image = %v", got.Image)
	}
}

func TestUserRepositoryDeleteCascades(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "user_del")

	prefs := &models.UserPreferences{UserID: user.ID, Tags: []string{"design"}, ToolIDs: []string{"logo-maker"}}
	if err := NewPreferencesRepository(db).Upsert(ctx, prefs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := NewUserRepository(db).Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := NewPreferencesRepository(db).GetByUserID(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected preferences to cascade, got err = %v", err)
	}
}
