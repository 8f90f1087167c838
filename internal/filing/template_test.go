package filing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var templateNow = time.Date(2024, time.March, 15, 14, 30, 45, 0, time.UTC)

func templateMessage() *Message {
	return &Message{
		ID:      "msg-4217-abc",
		Subject: "Réunion <équipe>",
		From:    Party{Name: "Jane Doe", Address: "jane@acme.com"},
		To:      []Party{{Name: "Paul Martin", Address: "paul@client.fr"}},
		SentAt:  templateNow.Add(-2 * time.Hour),
		// filing runs on the save instant, not on message timestamps
		ReceivedAt:     templateNow.Add(-1 * time.Hour),
		Importance:     ImportanceHigh,
		HasAttachments: true,
		Direction:      DirectionReceived,
	}
}

func TestExpandTemplateDateAndSubject(t *testing.T) {
	got := ExpandTemplate("{date}_{time}_{subject}", templateMessage(), DirectionReceived, DefaultCleaningPolicy(), templateNow)
	assert.Equal(t, "2024-03-15_14-30-45_Réunion _équipe_", got)
}

func TestExpandTemplatePlaceholders(t *testing.T) {
	msg := templateMessage()
	policy := DefaultCleaningPolicy()

	cases := map[string]string{
		"{date_fr}":         "15-03-2024",
		"{date_us}":         "03-15-2024",
		"{year}-{month}":    "2024-03",
		"{day}":             "15",
		"{hour}{minute}":    "1430",
		"{second}":          "45",
		"{sender_email}":    "jane@acme.com",
		"{sender_name}":     "Jane Doe",
		"{recipient_email}": "paul@client.fr",
		"{recipient_name}":  "Paul Martin",
		"{message_id}":      "msg-4217",
		"{importance}":      "high",
		"{has_attachments}": "with-attachments",
		"{week_day}":        "Friday",
		"{month_name}":      "March",
		"{quarter}":         "Q1",
		"{type_prefix}":     "RECEIVED",
		"{direction}":       "IN",
	}
	for pattern, want := range cases {
		assert.Equal(t, want, ExpandTemplate(pattern, msg, DirectionReceived, policy, templateNow), "pattern %s", pattern)
	}
}

func TestExpandTemplateSentRole(t *testing.T) {
	msg := templateMessage()
	msg.Direction = DirectionSent
	policy := DefaultCleaningPolicy()

	assert.Equal(t, "SENT", ExpandTemplate("{type_prefix}", msg, DirectionSent, policy, templateNow))
	assert.Equal(t, "OUT", ExpandTemplate("{direction}", msg, DirectionSent, policy, templateNow))
}

func TestExpandTemplateUnknownPlaceholderStaysLiteral(t *testing.T) {
	got := ExpandTemplate("{nope}_{date}", templateMessage(), DirectionReceived, DefaultCleaningPolicy(), templateNow)
	assert.Equal(t, "{nope}_2024-03-15", got)
}

func TestExpandTemplateSubjectTruncation(t *testing.T) {
	msg := templateMessage()
	msg.Subject = strings.Repeat("é", 80)
	policy := DefaultCleaningPolicy()

	long := ExpandTemplate("{subject}", msg, DirectionReceived, policy, templateNow)
	assert.Equal(t, strings.Repeat("é", 50), long)

	short := ExpandTemplate("{subject_short}", msg, DirectionReceived, policy, templateNow)
	assert.Equal(t, strings.Repeat("é", 20), short)
}

func TestExpandTemplateQuarterBoundaries(t *testing.T) {
	msg := templateMessage()
	policy := DefaultCleaningPolicy()

	cases := map[time.Month]string{
		time.January:  "Q1",
		time.March:    "Q1",
		time.April:    "Q2",
		time.June:     "Q2",
		time.July:     "Q3",
		time.October:  "Q4",
		time.December: "Q4",
	}
	for month, want := range cases {
		now := time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, ExpandTemplate("{quarter}", msg, DirectionReceived, policy, now), "month %s", month)
	}
}

func TestExpandTemplateEmptyCases(t *testing.T) {
	msg := templateMessage()
	policy := DefaultCleaningPolicy()

	assert.Equal(t, "", ExpandTemplate("", msg, DirectionReceived, policy, templateNow))

	msg.Subject = ""
	assert.Equal(t, "", ExpandTemplate("{subject}", msg, DirectionReceived, policy, templateNow))
}

func TestExpandTemplateNoRecipient(t *testing.T) {
	msg := templateMessage()
	msg.To = nil
	policy := DefaultCleaningPolicy()

	assert.Equal(t, "", ExpandTemplate("{recipient_email}", msg, DirectionReceived, policy, templateNow))
}
