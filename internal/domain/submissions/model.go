package submissions

import (
	"time"

	"mediation-cms/internal/access"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusInReview  Status = "in_review"
	StatusContacted Status = "contacted"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusContacted, StatusClosed:
		return true
	}
	return false
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type ContactPreferences struct {
	PreferredContact  string `json:"preferredContact"`
	CanLeaveVoicemail bool   `json:"canLeaveVoicemail"`
	CanText           bool   `json:"canText"`
}

// Submitter es la forma anidada que se guarda; el wizard manda campos planos.
type Submitter struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Address            Address            `json:"address"`
	ContactPreferences ContactPreferences `json:"contactPreferences"`
}

// Submission es una solicitud de servicio recibida desde el formulario público.
type Submission struct {
	ID          string
	ServiceType string

	Submitter Submitter
	// Details guarda el resto de las respuestas tal cual llegaron.
	Details map[string]any

	Status         Status
	IdempotencyKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Submission) AccessDocument() access.Document {
	return access.Document{ID: s.ID, Status: string(s.Status)}
}
