package filing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Maximum subject lengths applied before cleaning.
const (
	subjectMaxLen      = 50
	subjectShortMaxLen = 20
)

// ExpandTemplate expands a filename pattern against a message snapshot.
// Placeholders are brace-delimited, case-sensitive and mutually exclusive;
// every occurrence of each known placeholder is replaced, unknown ones stay
// as literal text. All date/time placeholders are evaluated from now — the
// save instant — not from the message's own timestamps; callers that need
// deterministic output (tests) pass a fixed now. After substitution the
// whole result goes through Sanitize exactly once with the given policy.
//
// The result may be empty (empty pattern, or a pattern of placeholders that
// all expand to nothing); the orchestrator substitutes the message id in
// that case.
func ExpandTemplate(pattern string, msg *Message, role Direction, policy CleaningPolicy, now time.Time) string {
	if pattern == "" {
		return ""
	}

	typePrefix := "RECEIVED"
	direction := "IN"
	if role == DirectionSent {
		typePrefix = "SENT"
		direction = "OUT"
	}

	attachments := "no-attachments"
	if msg.HasAttachments {
		attachments = "with-attachments"
	}

	var recipientEmail, recipientName string
	if len(msg.To) > 0 {
		recipientEmail = msg.To[0].Address
		recipientName = msg.To[0].Name
	}

	messageID := msg.ID
	if len(messageID) > 8 {
		messageID = messageID[:8]
	}

	quarter := fmt.Sprintf("Q%d", (int(now.Month())-1)/3+1)

	r := strings.NewReplacer(
		"{date}", now.Format("2006-01-02"),
		"{date_fr}", now.Format("02-01-2006"),
		"{date_us}", now.Format("01-02-2006"),
		"{year}", now.Format("2006"),
		"{month}", now.Format("01"),
		"{day}", now.Format("02"),
		"{time}", now.Format("15-04-05"),
		"{time_12}", now.Format("03-04-05PM"),
		"{hour}", now.Format("15"),
		"{minute}", now.Format("04"),
		"{second}", now.Format("05"),
		"{subject}", truncateRunes(msg.Subject, subjectMaxLen),
		"{subject_short}", truncateRunes(msg.Subject, subjectShortMaxLen),
		"{sender_email}", msg.From.Address,
		"{sender_name}", msg.From.Name,
		"{recipient_email}", recipientEmail,
		"{recipient_name}", recipientName,
		"{message_id}", messageID,
		"{importance}", string(msg.Importance),
		"{has_attachments}", attachments,
		"{timestamp}", strconv.FormatInt(now.Unix(), 10),
		"{timestamp_ms}", strconv.FormatInt(now.UnixMilli(), 10),
		"{week_day}", now.Weekday().String(),
		"{month_name}", now.Month().String(),
		"{quarter}", quarter,
		"{type_prefix}", typePrefix,
		"{direction}", direction,
	)

	return Sanitize(r.Replace(pattern), policy)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
