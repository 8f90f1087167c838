package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
	"github.com/classeur/core/internal/foldertree"
	"github.com/classeur/core/internal/storage"
	"gorm.io/gorm"
)

// ErrRootFolderNotSet indicates filing was attempted before the root
// folder was configured
var ErrRootFolderNotSet = errors.New("root folder not configured")

// FilingService runs filing decisions end to end: suggestion, path
// computation, serialization, the disk write and the bookkeeping that
// follows a successful save.
type FilingService struct {
	db           *gorm.DB
	senders      *SenderService
	settings     *SettingsService
	messages     *MessageService
	logService   *LogService
	suggester    *filing.SuggestionEngine
	orchestrator *filing.Orchestrator
	writer       *storage.Writer
}

// NewFilingService creates a new FilingService instance
func NewFilingService(db *gorm.DB, senders *SenderService, settings *SettingsService, messages *MessageService) *FilingService {
	return &FilingService{
		db:           db,
		senders:      senders,
		settings:     settings,
		messages:     messages,
		logService:   NewLogService(db),
		suggester:    filing.NewSuggestionEngine(),
		orchestrator: filing.NewOrchestrator(senders),
		writer:       storage.NewWriter(),
	}
}

// Suggest proposes a destination folder for a cached message
func (s *FilingService) Suggest(userID, messageID uint) (filing.Suggestion, error) {
	msg, err := s.messages.GetMessageByIDAndUserID(messageID, userID)
	if err != nil {
		return filing.Suggestion{}, err
	}

	tree, err := s.settings.GetFolderTree(userID)
	if err != nil {
		return filing.Suggestion{}, err
	}

	return s.suggester.Suggest(snapshotMessage(msg), s.senders, tree), nil
}

// FileResult reports a completed filing operation
type FileResult struct {
	FilePath          string `json:"file_path"`
	FileName          string `json:"file_name"`
	FolderPath        string `json:"folder_path"`
	DepositFolderUsed bool   `json:"deposit_folder_used"`
}

// FileMessage files a cached message into chosenPath (absolute or relative
// to the root folder). On success the message is marked filed and, when
// persistChoice is set, the sender directory remembers the folder.
func (s *FilingService) FileMessage(userID, messageID uint, chosenPath string, persistChoice bool) (*FileResult, error) {
	msg, err := s.messages.GetMessageByIDAndUserID(messageID, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	chosenPath = strings.TrimSpace(chosenPath)
	if chosenPath == "" {
		return nil, filing.ErrInvalidPath
	}
	absFolder := storage.ResolveUnderRoot(settings.RootFolder, chosenPath)
	if absFolder == "" {
		return nil, ErrRootFolderNotSet
	}

	snapshot := snapshotMessage(msg)

	decision, err := s.orchestrator.File(snapshot, absFolder, settings, persistChoice)
	if err != nil {
		s.logFiling(userID, msg, chosenPath, "", err)
		return nil, err
	}

	format := settings.FileFormat
	if !format.IsValid() {
		format = filing.FormatJSON
	}
	data, err := storage.SerializeMessage(msg, format)
	if err != nil {
		s.logFiling(userID, msg, chosenPath, decision.AbsolutePath, err)
		return nil, err
	}

	if err := s.writer.WriteFile(decision.AbsolutePath, data); err != nil {
		s.logFiling(userID, msg, chosenPath, decision.AbsolutePath, err)
		return nil, err
	}

	if err := s.messages.MarkFiled(msg.ID, absFolder); err != nil {
		s.logService.LogWarn(userID, models.LogModuleFiling, "file", "Failed to mark message filed", map[string]interface{}{
			"message_id": msg.ID,
			"error":      err.Error(),
		})
	}

	s.logFiling(userID, msg, chosenPath, decision.AbsolutePath, nil)

	return &FileResult{
		FilePath:          decision.AbsolutePath,
		FileName:          decision.FileName,
		FolderPath:        absFolder,
		DepositFolderUsed: decision.DepositFolderUsed,
	}, nil
}

func (s *FilingService) logFiling(userID uint, msg *models.Message, chosenPath, filePath string, err error) {
	s.logService.LogFiling(userID, FilingOperationDetails{
		MessageID:    msg.ID,
		ContactEmail: snapshotMessage(msg).ContactEmail(),
		ChosenPath:   chosenPath,
		AbsolutePath: filePath,
	}, err)
}

// CreateClientFolder creates a client folder under the root and deploys the
// configured folder-structure template into it. Returns the absolute path.
func (s *FilingService) CreateClientFolder(userID uint, name string) (string, error) {
	settings, err := s.settings.Snapshot(userID)
	if err != nil {
		return "", err
	}
	if settings.RootFolder == "" {
		return "", ErrRootFolderNotSet
	}

	tree, err := s.settings.GetFolderTree(userID)
	if err != nil {
		return "", err
	}

	path, err := storage.CreateClientFolder(settings.RootFolder, name, tree)
	if err != nil {
		s.logService.LogError(userID, models.LogModuleFiling, "create_folder", "Client folder creation failed", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return "", err
	}

	s.logService.LogInfo(userID, models.LogModuleFiling, "create_folder", "Client folder created", map[string]interface{}{
		"name": name,
		"path": path,
	})

	return path, nil
}

// AddFolderNode appends a node to the folder-structure template
func (s *FilingService) AddFolderNode(userID uint, parentID, name string, typ foldertree.NodeType, content string) (*foldertree.Node, error) {
	tree, err := s.settings.GetFolderTree(userID)
	if err != nil {
		return nil, err
	}

	node, err := tree.Add(parentID, name, typ, content)
	if err != nil {
		return nil, err
	}

	if err := s.settings.SaveFolderTree(userID, tree); err != nil {
		return nil, err
	}
	return node, nil
}

// RenameFolderNode renames a node of the folder-structure template
func (s *FilingService) RenameFolderNode(userID uint, nodeID, name string) error {
	tree, err := s.settings.GetFolderTree(userID)
	if err != nil {
		return err
	}

	if err := tree.Rename(nodeID, name); err != nil {
		return err
	}

	return s.settings.SaveFolderTree(userID, tree)
}

// RemoveFolderNode removes a node from the folder-structure template and
// drops sender associations pointing at the removed folders
func (s *FilingService) RemoveFolderNode(userID uint, nodeID string) error {
	tree, err := s.settings.GetFolderTree(userID)
	if err != nil {
		return err
	}

	removedPaths, err := tree.Remove(nodeID)
	if err != nil {
		return err
	}

	if err := s.settings.SaveFolderTree(userID, tree); err != nil {
		return err
	}

	// Sender associations may hold the logical path or the root-anchored
	// absolute path; cover both
	paths := removedPaths
	if snap, err := s.settings.Snapshot(userID); err == nil && snap.RootFolder != "" {
		for _, p := range removedPaths {
			paths = append(paths, storage.ResolveUnderRoot(snap.RootFolder, p))
		}
	}

	if removed, err := s.senders.DeleteByFolderPaths(paths); err != nil {
		s.logService.LogWarn(userID, models.LogModuleSettings, "remove_folder", "Sender cleanup after folder removal failed", map[string]interface{}{
			"node_id": nodeID,
			"error":   err.Error(),
		})
	} else if removed > 0 {
		s.logService.LogInfo(userID, models.LogModuleSettings, "remove_folder", "Removed sender associations for deleted folders", map[string]interface{}{
			"node_id": nodeID,
			"count":   removed,
		})
	}

	return nil
}

// snapshotMessage converts a cached message row into the read-only snapshot
// the filing core consumes
func snapshotMessage(msg *models.Message) *filing.Message {
	var to []filing.Party
	if msg.ToAddrs != "" {
		if err := json.Unmarshal([]byte(msg.ToAddrs), &to); err != nil {
			// Legacy rows stored plain address strings
			var addrs []string
			if json.Unmarshal([]byte(msg.ToAddrs), &addrs) == nil {
				for _, a := range addrs {
					to = append(to, filing.Party{Address: a})
				}
			}
		}
	}

	return &filing.Message{
		ID:             msg.MessageID,
		Subject:        msg.Subject,
		From:           filing.Party{Name: msg.FromName, Address: msg.FromAddr},
		To:             to,
		SentAt:         msg.SentAt,
		ReceivedAt:     msg.ReceivedAt,
		Importance:     filing.Importance(msg.Importance),
		HasAttachments: msg.HasAttachments,
		Direction:      filing.Direction(msg.Direction),
	}
}
