package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
)

// messageDocument is the JSON representation of a filed message.
type messageDocument struct {
	MessageID      string         `json:"message_id"`
	Subject        string         `json:"subject"`
	From           filing.Party   `json:"from"`
	To             []filing.Party `json:"to"`
	Direction      string         `json:"direction"`
	SentAt         time.Time      `json:"sent_at"`
	ReceivedAt     time.Time      `json:"received_at"`
	Importance     string         `json:"importance"`
	HasAttachments bool           `json:"has_attachments"`
	Body           string         `json:"body,omitempty"`
	HTMLBody       string         `json:"html_body,omitempty"`
}

// SerializeMessage renders a cached message into the representation the
// configured file format asks for. The eml and msg formats both carry the
// raw provider payload when it was cached; a plain-text rendering is
// synthesized when it was not.
func SerializeMessage(msg *models.Message, format filing.FileFormat) ([]byte, error) {
	switch format {
	case filing.FormatJSON:
		doc := messageDocument{
			MessageID:      msg.MessageID,
			Subject:        msg.Subject,
			From:           filing.Party{Name: msg.FromName, Address: msg.FromAddr},
			To:             decodeRecipients(msg.ToAddrs),
			Direction:      msg.Direction,
			SentAt:         msg.SentAt,
			ReceivedAt:     msg.ReceivedAt,
			Importance:     msg.Importance,
			HasAttachments: msg.HasAttachments,
			Body:           msg.Body,
			HTMLBody:       msg.HTMLBody,
		}
		return json.MarshalIndent(doc, "", "  ")

	case filing.FormatTXT:
		return []byte(renderText(msg)), nil

	case filing.FormatEML, filing.FormatMSG:
		if len(msg.RawContent) > 0 {
			return msg.RawContent, nil
		}
		return []byte(renderText(msg)), nil

	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
}

// renderText builds a readable header block plus body.
func renderText(msg *models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "From: %s\n", formatParty(msg.FromName, msg.FromAddr))
	for _, to := range decodeRecipients(msg.ToAddrs) {
		fmt.Fprintf(&b, "To: %s\n", formatParty(to.Name, to.Address))
	}
	if !msg.SentAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", msg.SentAt.Format(time.RFC1123Z))
	}
	fmt.Fprintf(&b, "Importance: %s\n", msg.Importance)
	b.WriteString("\n")
	if msg.Body != "" {
		b.WriteString(msg.Body)
	} else {
		b.WriteString(msg.HTMLBody)
	}
	b.WriteString("\n")
	return b.String()
}

func formatParty(name, addr string) string {
	if name != "" {
		return fmt.Sprintf("%s <%s>", name, addr)
	}
	return addr
}

// decodeRecipients parses the JSON recipient list stored on the model.
// Older rows stored a bare string array; both shapes decode.
func decodeRecipients(raw string) []filing.Party {
	if raw == "" {
		return nil
	}
	var parties []filing.Party
	if err := json.Unmarshal([]byte(raw), &parties); err == nil {
		return parties
	}
	var addrs []string
	if err := json.Unmarshal([]byte(raw), &addrs); err == nil {
		for _, a := range addrs {
			parties = append(parties, filing.Party{Address: a})
		}
	}
	return parties
}
