package filing

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeDirectory is an in-memory SenderLookup
type fakeDirectory struct {
	entries map[string]SenderEntry
	getErr  error
	listErr error
}

func (f *fakeDirectory) Get(email string) (*SenderEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if entry, ok := f.entries[email]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (f *fakeDirectory) ListAll() ([]SenderEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]SenderEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeDirectory) Upsert(entry SenderEntry) error {
	if f.entries == nil {
		f.entries = make(map[string]SenderEntry)
	}
	f.entries[NormalizeEmail(entry.Email)] = entry
	return nil
}

func receivedFrom(name, address string) *Message {
	return &Message{
		ID:        "id-1",
		Subject:   "hello",
		From:      Party{Name: name, Address: address},
		Direction: DirectionReceived,
	}
}

func TestSuggestExactMatch(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"jane@acme.com": {Email: "jane@acme.com", Name: "Jane Doe", FolderPath: "/clients/acme"},
	}}

	s := engine.Suggest(receivedFrom("Jane Doe", "Jane@Acme.com"), dir, nil)
	assert.Equal(t, SuggestionExisting, s.Type)
	assert.Equal(t, ConfidenceHigh, s.Confidence)
	assert.Equal(t, "/clients/acme", s.FolderPath)
	assert.Equal(t, "Jane Doe", s.ClientName)
}

func TestSuggestFuzzyMatchOnFolderLeaf(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"contact@acme.com": {Email: "contact@acme.com", Name: "ACME SAS", FolderPath: "/clients/acme"},
	}}

	// unknown address whose local part matches the folder leaf
	s := engine.Suggest(receivedFrom("", "acme@other.org"), dir, nil)
	assert.Equal(t, SuggestionExisting, s.Type)
	assert.Equal(t, ConfidenceMedium, s.Confidence)
	assert.Equal(t, "/clients/acme", s.FolderPath)
}

func TestSuggestFuzzyAmbiguousYieldsNew(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"a@acme.com": {Email: "a@acme.com", Name: "ACME Paris", FolderPath: "/clients/acme-paris"},
		"b@acme.com": {Email: "b@acme.com", Name: "ACME Lyon", FolderPath: "/clients/acme-lyon"},
	}}

	s := engine.Suggest(receivedFrom("ACME", "someone@elsewhere.com"), dir, nil)
	assert.Equal(t, SuggestionNew, s.Type)
	assert.Equal(t, ConfidenceLow, s.Confidence)
}

func TestSuggestShortNeedlesIgnored(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"x@acme.com": {Email: "x@acme.com", Name: "ab", FolderPath: "/clients/ab"},
	}}

	// both display name and local part are under 3 runes
	s := engine.Suggest(receivedFrom("ab", "ab@foo.com"), dir, nil)
	assert.Equal(t, SuggestionNew, s.Type)
}

func TestSuggestShortMultibyteLocalPartIgnored(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"x@acme.com": {Email: "x@acme.com", Name: "éa studio", FolderPath: "/clients/ea"},
	}}

	// "éa" is two runes even though it is three bytes
	s := engine.Suggest(receivedFrom("", "éa@foo.fr"), dir, nil)
	assert.Equal(t, SuggestionNew, s.Type)
}

func TestSuggestUnknownSenderYieldsNew(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{}

	s := engine.Suggest(receivedFrom("Someone New", "newbie@nowhere.net"), dir, nil)
	assert.Equal(t, SuggestionNew, s.Type)
	assert.Equal(t, ConfidenceLow, s.Confidence)
	assert.Equal(t, "Someone New", s.ClientName)
	assert.Empty(t, s.FolderPath)
}

func TestSuggestNoContactEmail(t *testing.T) {
	engine := NewSuggestionEngine()

	s := engine.Suggest(&Message{Direction: DirectionReceived}, &fakeDirectory{}, nil)
	assert.Equal(t, SuggestionNone, s.Type)
	assert.Equal(t, ConfidenceNone, s.Confidence)
}

func TestSuggestSentMessageUsesRecipient(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{entries: map[string]SenderEntry{
		"paul@client.fr": {Email: "paul@client.fr", Name: "Paul", FolderPath: "/clients/paul"},
	}}

	msg := &Message{
		ID:        "id-2",
		From:      Party{Address: "me@mine.com"},
		To:        []Party{{Name: "Paul", Address: "paul@client.fr"}},
		Direction: DirectionSent,
	}
	s := engine.Suggest(msg, dir, nil)
	assert.Equal(t, SuggestionExisting, s.Type)
	assert.Equal(t, "/clients/paul", s.FolderPath)
}

func TestSuggestDirectoryErrorDowngraded(t *testing.T) {
	engine := NewSuggestionEngine()
	dir := &fakeDirectory{getErr: errors.New("database is locked")}

	s := engine.Suggest(receivedFrom("Jane", "jane@acme.com"), dir, nil)
	assert.Equal(t, SuggestionError, s.Type)
	assert.Equal(t, ConfidenceNone, s.Confidence)
	assert.Contains(t, s.Reason, "database is locked")
}

func TestSuggestNilMessageRecovered(t *testing.T) {
	engine := NewSuggestionEngine()

	s := engine.Suggest(nil, &fakeDirectory{}, nil)
	// nil message has no contact email; must not panic outward
	assert.Equal(t, SuggestionNone, s.Type)
}
