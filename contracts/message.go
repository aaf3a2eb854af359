package contracts

// Message is a single queue message as seen by the codec: an opaque text
// body plus named string attributes carried alongside it.
type Message struct {
	Body       string            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewMessage creates a message with the given body and no attributes.
func NewMessage(body string) Message {
	return Message{Body: body}
}

// Attribute returns the named attribute value and whether it is present.
func (m Message) Attribute(name string) (string, bool) {
	value, ok := m.Attributes[name]
	return value, ok
}

// WithAttribute returns a copy of the message with the attribute set.
// The original message is not modified.
func (m Message) WithAttribute(name, value string) Message {
	attributes := m.CloneAttributes()
	attributes[name] = value
	return Message{Body: m.Body, Attributes: attributes}
}

// CloneAttributes returns a mutable copy of the message attributes.
// The copy is never nil, so callers can add entries without checking.
func (m Message) CloneAttributes() map[string]string {
	attributes := make(map[string]string, len(m.Attributes)+1)
	for k, v := range m.Attributes {
		attributes[k] = v
	}
	return attributes
}
