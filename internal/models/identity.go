package models

import "time"

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	Issuer    string    `json:"iss"`
	ExpiresAt time.Time `json:"exp"`
}
