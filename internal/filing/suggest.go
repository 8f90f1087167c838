package filing

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/classeur/core/internal/foldertree"
)

// SuggestionType classifies a destination suggestion.
type SuggestionType string

const (
	SuggestionExisting SuggestionType = "existing"
	SuggestionNew      SuggestionType = "new"
	SuggestionNone     SuggestionType = "no_suggestion"
	SuggestionError    SuggestionType = "error"
)

// Confidence rates how trustworthy a suggestion is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Suggestion is the engine output. It is never persisted; the UI either
// accepts the proposed folder or lets the user pick another one.
type Suggestion struct {
	Type       SuggestionType `json:"type"`
	FolderPath string         `json:"folder_path,omitempty"`
	Confidence Confidence     `json:"confidence"`
	ClientName string         `json:"client_name,omitempty"`
	Reason     string         `json:"reason"`
}

// SuggestionEngine proposes a best-effort destination folder for a message
// from the sender directory and the configured folder structure.
type SuggestionEngine struct{}

// NewSuggestionEngine creates a SuggestionEngine.
func NewSuggestionEngine() *SuggestionEngine {
	return &SuggestionEngine{}
}

// Suggest returns a destination suggestion for msg. It never fails outward:
// any internal error (nil message, directory unavailable) is converted into
// a Suggestion of type error so the caller stays usable.
//
// Priority order, first match wins:
//  1. exact sender-directory hit on the contact email → existing/high
//  2. unambiguous fuzzy match on display name or address local part against
//     entry names and folder leaf names → existing/medium
//  3. otherwise → new/low, user must choose or create
//
// A message with no resolvable contact email yields no_suggestion/none.
func (e *SuggestionEngine) Suggest(msg *Message, dir SenderLookup, tree *foldertree.Tree) (s Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			s = Suggestion{
				Type:       SuggestionError,
				Confidence: ConfidenceNone,
				Reason:     fmt.Sprintf("suggestion failed: %v", r),
			}
		}
	}()

	contact := NormalizeEmail(msg.ContactEmail())
	if contact == "" {
		return Suggestion{
			Type:       SuggestionNone,
			Confidence: ConfidenceNone,
			Reason:     "message has no resolvable contact email",
		}
	}

	entry, err := dir.Get(contact)
	if err != nil {
		return Suggestion{
			Type:       SuggestionError,
			Confidence: ConfidenceNone,
			Reason:     fmt.Sprintf("sender directory unavailable: %v", err),
		}
	}
	if entry != nil {
		clientName := entry.Name
		if clientName == "" {
			clientName = contact
		}
		return Suggestion{
			Type:       SuggestionExisting,
			FolderPath: entry.FolderPath,
			Confidence: ConfidenceHigh,
			ClientName: clientName,
			Reason:     "known correspondent",
		}
	}

	if match := e.fuzzyMatch(msg, contact, dir); match != nil {
		clientName := match.Name
		if clientName == "" {
			clientName = match.Email
		}
		return Suggestion{
			Type:       SuggestionExisting,
			FolderPath: match.FolderPath,
			Confidence: ConfidenceMedium,
			ClientName: clientName,
			Reason:     "similar existing client",
		}
	}

	return Suggestion{
		Type:       SuggestionNew,
		Confidence: ConfidenceLow,
		ClientName: msg.ContactName(),
		Reason:     "no match found, user must choose or create",
	}
}

// fuzzyMatch compares the contact's display name and address local part
// against every entry's name and folder leaf name, case-insensitive,
// substring in either direction. Exactly one matching entry is returned;
// zero or several (ambiguous) yield nil.
func (e *SuggestionEngine) fuzzyMatch(msg *Message, contact string, dir SenderLookup) *SenderEntry {
	entries, err := dir.ListAll()
	if err != nil {
		return nil
	}

	needles := fuzzyNeedles(msg.ContactName(), contact)
	if len(needles) == 0 {
		return nil
	}

	var match *SenderEntry
	for i := range entries {
		entry := &entries[i]
		haystacks := []string{
			strings.ToLower(entry.Name),
			strings.ToLower(filepath.Base(entry.FolderPath)),
		}
		if !fuzzyHit(needles, haystacks) {
			continue
		}
		if match != nil {
			return nil // ambiguous, let the user decide
		}
		match = entry
	}
	return match
}

// fuzzyNeedles builds the comparison terms for a contact: its display name
// and the local part of its address. Terms shorter than 3 runes are skipped;
// they match almost everything.
func fuzzyNeedles(name, email string) []string {
	var needles []string
	if n := strings.ToLower(strings.TrimSpace(name)); len([]rune(n)) >= 3 && n != email {
		needles = append(needles, n)
	}
	if at := strings.IndexByte(email, '@'); at > 0 && utf8.RuneCountInString(email[:at]) >= 3 {
		needles = append(needles, email[:at])
	}
	return needles
}

// fuzzyHit reports whether any needle and any haystack contain one another.
func fuzzyHit(needles, haystacks []string) bool {
	for _, n := range needles {
		for _, h := range haystacks {
			if h == "" {
				continue
			}
			if strings.Contains(h, n) || strings.Contains(n, h) {
				return true
			}
		}
	}
	return false
}
