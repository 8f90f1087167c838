package filing

import "strings"

// reservedChars are always replaced regardless of the policy: written paths
// must stay valid on every filesystem the root folder may live on.
const reservedChars = `<>:"/\|?*`

// CleaningPolicy controls filename character cleaning. Characters holds the
// user-configurable set; a character is cleaned only when its flag is true.
// ReplaceWith is normalized to a single rune ('_' when empty or multi-rune
// input sneaks in through settings).
type CleaningPolicy struct {
	Enabled     bool            `json:"enabled"`
	Characters  map[string]bool `json:"characters_to_clean"`
	ReplaceWith string          `json:"replace_with"`
}

// DefaultCleaningPolicy returns the policy applied when a user has never
// touched the cleaning settings: only the mandatory pass, replacing with '_'.
func DefaultCleaningPolicy() CleaningPolicy {
	return CleaningPolicy{Enabled: false, ReplaceWith: "_"}
}

// replacement returns the single replacement rune for the policy. A reserved
// or control character configured as the replacement would defeat the
// mandatory pass, so it falls back to '_' too.
func (p CleaningPolicy) replacement() rune {
	for _, r := range p.ReplaceWith {
		if r < 0x20 || r == 0x7F || strings.ContainsRune(reservedChars, r) {
			return '_'
		}
		return r
	}
	return '_'
}

// cleans reports whether the optional per-character map asks for r to be
// replaced. Only consulted when the policy is enabled.
func (p CleaningPolicy) cleans(r rune) bool {
	if p.Characters == nil {
		return false
	}
	return p.Characters[string(r)]
}

// Sanitize maps text to a filesystem-safe string. Control characters
// (0x00-0x1F, 0x7F) and the OS-reserved set <>:"/\|?* are always replaced,
// even with the policy disabled. When the policy is enabled, every flagged
// character in the policy map is replaced as well, wherever it occurs.
// Replacement is a literal single-rune substitution, never deletion, so the
// rune length of the input is preserved. No Unicode normalization, no case
// changes.
func Sanitize(text string, policy CleaningPolicy) string {
	if text == "" {
		return ""
	}
	repl := policy.replacement()

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r < 0x20 || r == 0x7F:
			b.WriteRune(repl)
		case strings.ContainsRune(reservedChars, r):
			b.WriteRune(repl)
		case policy.Enabled && policy.cleans(r):
			b.WriteRune(repl)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
