package filing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeReservedCharacters(t *testing.T) {
	policy := DefaultCleaningPolicy()

	assert.Equal(t, "Réunion _équipe_", Sanitize("Réunion <équipe>", policy))
	assert.Equal(t, "a_b_c", Sanitize("a/b\\c", policy))
	assert.Equal(t, "facture_2024", Sanitize("facture:2024", policy))
	assert.Equal(t, "", Sanitize("", policy))
}

func TestSanitizePolicyCharacters(t *testing.T) {
	policy := CleaningPolicy{
		Enabled:     true,
		Characters:  map[string]bool{" ": true, "'": true, "-": false},
		ReplaceWith: "-",
	}

	assert.Equal(t, "l-entretien-annuel", Sanitize("l'entretien annuel", policy))
	// disabled flag leaves the character alone
	assert.Equal(t, "pre-vente", Sanitize("pre-vente", policy))

	// same input with the policy off keeps spaces and quotes
	policy.Enabled = false
	assert.Equal(t, "l'entretien annuel", Sanitize("l'entretien annuel", policy))
}

func TestSanitizeReplacementFallback(t *testing.T) {
	// a reserved replacement rune would undo the mandatory pass
	policy := CleaningPolicy{ReplaceWith: "/"}
	assert.Equal(t, "a_b", Sanitize("a/b", policy))

	policy = CleaningPolicy{ReplaceWith: ""}
	assert.Equal(t, "a_b", Sanitize("a<b", policy))
}

func TestProperty_SanitizeTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	policyGen := gen.Bool().Map(func(enabled bool) CleaningPolicy {
		return CleaningPolicy{
			Enabled:     enabled,
			Characters:  map[string]bool{" ": true, ",": true},
			ReplaceWith: "_",
		}
	})

	properties.Property("output_never_contains_reserved_or_control_chars", prop.ForAll(
		func(text string, policy CleaningPolicy) bool {
			out := Sanitize(text, policy)
			for _, r := range out {
				if r < 0x20 || r == 0x7F || strings.ContainsRune(reservedChars, r) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		policyGen,
	))

	properties.Property("rune_length_is_preserved", prop.ForAll(
		func(text string, policy CleaningPolicy) bool {
			return utf8.RuneCountInString(Sanitize(text, policy)) == utf8.RuneCountInString(text)
		},
		gen.AnyString(),
		policyGen,
	))

	properties.Property("sanitize_is_idempotent", prop.ForAll(
		func(text string, policy CleaningPolicy) bool {
			once := Sanitize(text, policy)
			return Sanitize(once, policy) == once
		},
		gen.AnyString(),
		policyGen,
	))

	properties.TestingRun(t)
}
