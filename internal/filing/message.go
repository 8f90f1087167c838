package filing

import (
	"strings"
	"time"
)

// Direction indicates whether a message was received or sent by the account
// owner. It selects the filename pattern and the deposit-folder setting that
// apply to a filing decision.
type Direction string

const (
	// DirectionReceived marks a message that arrived in the inbox
	DirectionReceived Direction = "received"
	// DirectionSent marks a message sent by the account owner
	DirectionSent Direction = "sent"
)

// Importance is the provider-assigned importance of a message
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Party is one endpoint of a message (display name plus address)
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Message is the read-only snapshot the filing core consumes. It carries
// everything the template expander and suggestion engine need; mutation of
// the underlying stored message never flows back through it.
type Message struct {
	ID             string
	Subject        string
	From           Party
	To             []Party
	SentAt         time.Time
	ReceivedAt     time.Time
	Importance     Importance
	HasAttachments bool
	Direction      Direction
}

// ContactEmail returns the correspondent address for this message: the
// sender for received mail, the first recipient for sent mail. Returns ""
// when no address can be resolved.
func (m *Message) ContactEmail() string {
	if m == nil {
		return ""
	}
	switch m.Direction {
	case DirectionSent:
		if len(m.To) > 0 {
			return strings.TrimSpace(m.To[0].Address)
		}
		return ""
	default:
		return strings.TrimSpace(m.From.Address)
	}
}

// ContactName returns the correspondent display name, falling back to the
// contact email when the party carries no name.
func (m *Message) ContactName() string {
	if m == nil {
		return ""
	}
	var name string
	switch m.Direction {
	case DirectionSent:
		if len(m.To) > 0 {
			name = strings.TrimSpace(m.To[0].Name)
		}
	default:
		name = strings.TrimSpace(m.From.Name)
	}
	if name == "" {
		return m.ContactEmail()
	}
	return name
}
