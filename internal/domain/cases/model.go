package cases

import (
	"time"

	"mediation-cms/internal/access"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusScheduled Status = "scheduled"
	StatusResolved  Status = "resolved"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusScheduled, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Case es un expediente de mediación. Mediators y Participants son IDs de users.
type Case struct {
	ID      string
	Title   string
	Summary string
	Status  Status

	Mediators    []string
	Participants []string

	MediatorNotes string

	// SubmissionID enlaza la solicitud de intake que originó el caso (opcional).
	SubmissionID string
	SessionAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Redacted lista los campos ocultados al requester; no se persiste.
	Redacted []string
}

func (c Case) AccessDocument() access.Document {
	return access.Document{
		ID:     c.ID,
		Status: string(c.Status),
		Relations: map[string][]string{
			access.RelMediators:    c.Mediators,
			access.RelParticipants: c.Participants,
		},
	}
}

func (c Case) IsRedacted(field string) bool {
	for _, f := range c.Redacted {
		if f == field {
			return true
		}
	}
	return false
}
