package events

import (
	"time"

	"mediation-cms/internal/access"
)

// Event es un taller, capacitación o encuentro comunitario publicado en el sitio.
type Event struct {
	ID   string
	Slug string

	Title       string
	Description string

	StartsAt time.Time
	EndsAt   *time.Time

	Format          Format
	Location        string
	RegistrationURL string

	Hosts  []string
	Status EventStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Event) AccessDocument() access.Document {
	return access.Document{
		ID:     e.ID,
		Status: string(e.Status),
		Relations: map[string][]string{
			access.RelHosts: e.Hosts,
		},
	}
}
