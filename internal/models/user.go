package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPurchasedCoins is the balance granted to a freshly provisioned account.
const DefaultPurchasedCoins = 100

// User is the local account backing an identity-provider subject.
type User struct {
	ID             uuid.UUID `json:"id"`
	ProviderID     string    `json:"providerId"`
	Email          string    `json:"email"`
	Username       *string   `json:"username,omitempty"`
	Image          *string   `json:"image,omitempty"`
	PurchasedCoins int       `json:"purchasedCoins"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ApplyIdentity copies profile fields reported by the identity provider onto u
// and reports whether anything changed.
func (u *User) ApplyIdentity(id Identity) bool {
	changed := false
	if id.Email != "" && id.Email != u.Email {
		u.Email = id.Email
		changed = true
	}
	if id.Name != "" && (u.Username == nil || *u.Username != id.Name) {
		name := id.Name
		u.Username = &name
		changed = true
	}
	if id.Picture != "" && (u.Image == nil || *u.Image != id.Picture) {
		picture := id.Picture
		u.Image = &picture
		changed = true
	}
	return changed
}
