// Package domain contains core concepts of the chat system.
// No storage, network, or UI logic should be added here.
package domain

import "time"

// User is the full account record. The password hash must never leave
// the repository and service layers; every read surface returns PublicUser.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the shape safe to return to any caller.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
