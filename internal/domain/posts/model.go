package posts

import (
	"time"

	"mediation-cms/internal/access"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post es una entrada del blog público.
type Post struct {
	ID      string
	Title   string
	Slug    string
	Excerpt string
	Body    string

	Status  Status
	Authors []string

	CoverMediaID string

	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Post) AccessDocument() access.Document {
	return access.Document{
		ID:     p.ID,
		Status: string(p.Status),
		Relations: map[string][]string{
			access.RelAuthors: p.Authors,
		},
	}
}
