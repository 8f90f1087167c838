package filing

import (
	"path/filepath"
	"strings"
	"time"
)

// FileFormat selects the on-disk representation of a filed message.
type FileFormat string

const (
	FormatJSON FileFormat = "json"
	FormatTXT  FileFormat = "txt"
	FormatEML  FileFormat = "eml"
	FormatMSG  FileFormat = "msg"
)

// IsValid reports whether the format is one of the supported values.
func (f FileFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatTXT, FormatEML, FormatMSG:
		return true
	}
	return false
}

// Settings is the immutable configuration snapshot one filing decision runs
// against. It is assembled by the settings service from the persisted
// general settings; the core never reads the store itself.
type Settings struct {
	RootFolder string

	// Deposit-folder names are logical paths relative to a per-contact
	// folder. LegacyDepositFolder is the pre-split single setting, honored
	// for received mail when ReceivedDepositFolder is unset.
	ReceivedDepositFolder string
	SentDepositFolder     string
	LegacyDepositFolder   string

	FileFormat          FileFormat
	FilenamePattern     string
	FilenamePatternSent string
	Cleaning            CleaningPolicy
}

// FilingResult is the decision the orchestrator emits: where to write and
// under what name. The actual write belongs to the storage layer.
type FilingResult struct {
	AbsolutePath      string `json:"absolute_path"`
	FileName          string `json:"file_name"`
	DepositFolder     string `json:"deposit_folder,omitempty"`
	DepositFolderUsed bool   `json:"deposit_folder_used"`
}

// Orchestrator combines template expansion, sanitization and deposit-folder
// resolution into the final filing decision, and optionally persists the
// chosen base path in the sender directory.
type Orchestrator struct {
	senders SenderStore
	now     func() time.Time
}

// NewOrchestrator creates an Orchestrator writing sender choices to senders.
func NewOrchestrator(senders SenderStore) *Orchestrator {
	return &Orchestrator{senders: senders, now: time.Now}
}

// WithClock overrides the save-time clock. Tests use it to pin the
// date/time placeholders.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// File computes the absolute path and filename for msg under chosenPath.
//
// The persisted sender path is chosenPath, not the deposit-resolved final
// path: the deposit probe is re-applied on every save, so a deposit
// subfolder created later is picked up without reconfiguring the sender.
// The upsert happens only after path computation fully succeeded; a failed
// decision never mutates the directory.
func (o *Orchestrator) File(msg *Message, chosenPath string, settings Settings, persistChoice bool) (*FilingResult, error) {
	contact := NormalizeEmail(msg.ContactEmail())
	if contact == "" {
		return nil, ErrInvalidMessage
	}
	if strings.TrimSpace(chosenPath) == "" {
		return nil, ErrInvalidPath
	}

	role := msg.Direction
	pattern := settings.FilenamePattern
	depositName := settings.ReceivedDepositFolder
	if depositName == "" {
		depositName = settings.LegacyDepositFolder
	}
	if role == DirectionSent {
		pattern = settings.FilenamePatternSent
		depositName = settings.SentDepositFolder
	}

	name := ExpandTemplate(pattern, msg, role, settings.Cleaning, o.now())
	if name == "" {
		// Pattern produced nothing usable; fall back to the message id so
		// the decision still yields a non-empty filename.
		name = Sanitize(msg.ID, settings.Cleaning)
		if name == "" {
			name = "message"
		}
	}

	format := settings.FileFormat
	if !format.IsValid() {
		format = FormatJSON
	}
	fileName := name + "." + string(format)

	resolution := ResolveDepositFolder(chosenPath, depositName)

	result := &FilingResult{
		AbsolutePath:      filepath.Join(resolution.FinalPath, fileName),
		FileName:          fileName,
		DepositFolder:     depositName,
		DepositFolderUsed: resolution.Used,
	}

	if persistChoice {
		entry := SenderEntry{
			Email:      contact,
			Name:       msg.ContactName(),
			FolderPath: chosenPath,
			UpdatedAt:  o.now(),
		}
		if err := o.senders.Upsert(entry); err != nil {
			return nil, err
		}
	}

	return result, nil
}
