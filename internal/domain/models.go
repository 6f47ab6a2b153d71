package domain

import "time"

// Submission is a contact form submission as recorded in the local journal.
type Submission struct {
	ID          string    `json:"id" yaml:"id"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Message     string    `json:"message,omitempty" yaml:"message,omitempty"`
	StatusCode  int       `json:"status_code" yaml:"status_code"`
	RequestID   string    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}

// Succeeded reports whether the API accepted the submission.
func (s Submission) Succeeded() bool {
	return s.Error == "" && s.StatusCode >= 200 && s.StatusCode < 300
}
