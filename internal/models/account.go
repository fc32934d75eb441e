package models

import "time"

// Account represents a user of the identity store
type Account struct {
	Id           string         `json:"id"`
	Email        string         `json:"email"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	LastSignInAt *time.Time     `json:"last_sign_in_at,omitempty"`
}
