package publishers

import (
	"time"

	"github.com/alpn-software/portfolio-client/internal/domain"
)

// EventContactSubmitted is emitted after every contact form submission attempt.
const EventContactSubmitted = "contact.submitted"

// Event represents the payload published downstream.
type Event struct {
	Type        string            `json:"type"`
	Submission  domain.Submission `json:"submission"`
	PublishedAt time.Time         `json:"published_at"`
}

// NewEvent constructs a contact-submitted Event for sub.
func NewEvent(sub domain.Submission) Event {
	return Event{
		Type:        EventContactSubmitted,
		Submission:  sub,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are attached to broker messages so consumers can filter without decoding.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"event_type":    e.Type,
		"submission_id": e.Submission.ID,
	}
	if e.Submission.Succeeded() {
		attrs["outcome"] = "accepted"
	} else {
		attrs["outcome"] = "failed"
	}
	return attrs
}
