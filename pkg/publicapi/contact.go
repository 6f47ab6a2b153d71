package publicapi

// ContactData holds caller-supplied contact form fields. Only email, name and
// message are forwarded; every other key is dropped.
type ContactData map[string]any

// Contact form field names.
const (
	FieldEmail   = "email"
	FieldName    = "name"
	FieldMessage = "message"
)

// ContactPayload is the JSON body sent to the contacts endpoint. Fields absent
// from the input stay nil and are omitted from the encoded body.
type ContactPayload struct {
	Email   any `json:"email,omitempty"`
	Name    any `json:"name,omitempty"`
	Message any `json:"message,omitempty"`
}

// NewContactPayload copies the three forwarded fields verbatim.
func NewContactPayload(data ContactData) ContactPayload {
	return ContactPayload{
		Email:   data[FieldEmail],
		Name:    data[FieldName],
		Message: data[FieldMessage],
	}
}
