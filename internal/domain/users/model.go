package users

import (
	"time"

	"mediation-cms/internal/access"
)

// User es una cuenta del staff o de un participante.
type User struct {
	ID    string
	Email string
	Name  string
	Role  access.Role

	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) AccessDocument() access.Document {
	return access.Document{ID: u.ID, Role: u.Role}
}
