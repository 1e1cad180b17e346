package events

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	// Cancelled no se borra: queda visible para staff y hosts.
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

// Format indica dónde ocurre el evento.
type Format string

const (
	FormatInPerson Format = "in_person"
	FormatOnline   Format = "online"
	FormatHybrid   Format = "hybrid"
)

func (f Format) Valid() bool {
	switch f {
	case FormatInPerson, FormatOnline, FormatHybrid:
		return true
	}
	return false
}
