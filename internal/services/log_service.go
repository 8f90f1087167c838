package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/classeur/core/internal/database/models"
	"gorm.io/gorm"
)

// LogService handles logging operations
type LogService struct {
	db       *gorm.DB
	logLevel models.LogLevel
}

// NewLogService creates a new LogService instance
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{
		db:       db,
		logLevel: models.LogLevelInfo,
	}
}

// NewLogServiceWithLevel creates a new LogService instance with specified log level
func NewLogServiceWithLevel(db *gorm.DB, level string) *LogService {
	return &LogService{
		db:       db,
		logLevel: parseLogLevel(level),
	}
}

// parseLogLevel converts a string to LogLevel
func parseLogLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.LogLevelDebug
	case "INFO":
		return models.LogLevelInfo
	case "WARN", "WARNING":
		return models.LogLevelWarn
	case "ERROR":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// shouldLog checks if a log entry should be recorded based on log level
func (s *LogService) shouldLog(level models.LogLevel) bool {
	levelPriority := map[models.LogLevel]int{
		models.LogLevelDebug: 0,
		models.LogLevelInfo:  1,
		models.LogLevelWarn:  2,
		models.LogLevelError: 3,
	}
	return levelPriority[level] >= levelPriority[s.logLevel]
}

// LogEntry represents a log entry to be created
type LogEntry struct {
	UserID  uint
	Level   models.LogLevel
	Module  models.LogModule
	Action  string
	Message string
	Details interface{} // Will be serialized to JSON
}

// Log creates a new log entry
func (s *LogService) Log(entry LogEntry) error {
	if !s.shouldLog(entry.Level) {
		return nil
	}

	var detailsJSON string
	if entry.Details != nil {
		bytes, err := json.Marshal(entry.Details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(bytes)
		}
	}

	log := &models.Log{
		UserID:  entry.UserID,
		Level:   string(entry.Level),
		Module:  string(entry.Module),
		Action:  entry.Action,
		Message: entry.Message,
		Details: detailsJSON,
	}

	return s.db.Create(log).Error
}

// LogInfo creates an INFO level log entry
func (s *LogService) LogInfo(userID uint, module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{UserID: userID, Level: models.LogLevelInfo, Module: module, Action: action, Message: message, Details: details})
}

// LogWarn creates a WARN level log entry
func (s *LogService) LogWarn(userID uint, module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{UserID: userID, Level: models.LogLevelWarn, Module: module, Action: action, Message: message, Details: details})
}

// LogError creates an ERROR level log entry
func (s *LogService) LogError(userID uint, module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{UserID: userID, Level: models.LogLevelError, Module: module, Action: action, Message: message, Details: details})
}

// LogDebug creates a DEBUG level log entry
func (s *LogService) LogDebug(userID uint, module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{UserID: userID, Level: models.LogLevelDebug, Module: module, Action: action, Message: message, Details: details})
}

// FilingOperationDetails represents details for filing operation logs
type FilingOperationDetails struct {
	MessageID    uint   `json:"message_id,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ChosenPath   string `json:"chosen_path,omitempty"`
	AbsolutePath string `json:"absolute_path,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	DepositUsed  bool   `json:"deposit_used,omitempty"`
	Persisted    bool   `json:"persisted,omitempty"`
	Status       string `json:"status"`
	ErrorMsg     string `json:"error_msg,omitempty"`
}

// LogFiling logs a filing decision outcome
func (s *LogService) LogFiling(userID uint, details FilingOperationDetails, err error) error {
	level := models.LogLevelInfo
	message := "Message filed"
	if err != nil {
		level = models.LogLevelError
		message = "Filing failed"
		details.Status = "failed"
		details.ErrorMsg = err.Error()
	} else {
		details.Status = "success"
	}
	return s.Log(LogEntry{
		UserID:  userID,
		Level:   level,
		Module:  models.LogModuleFiling,
		Action:  "file",
		Message: message,
		Details: details,
	})
}

// AccountChangeDetails represents details for account configuration changes
type AccountChangeDetails struct {
	AccountID    uint   `json:"account_id"`
	AccountEmail string `json:"account_email"`
}

// LogAccountCreated logs an account creation event
func (s *LogService) LogAccountCreated(userID uint, accountID uint, email string) error {
	return s.LogInfo(userID, models.LogModuleAccount, "create", "Mail account created", AccountChangeDetails{AccountID: accountID, AccountEmail: email})
}

// LogAccountUpdated logs an account update event
func (s *LogService) LogAccountUpdated(userID uint, accountID uint, email string) error {
	return s.LogInfo(userID, models.LogModuleAccount, "update", "Mail account updated", AccountChangeDetails{AccountID: accountID, AccountEmail: email})
}

// LogAccountDeleted logs an account deletion event
func (s *LogService) LogAccountDeleted(userID uint, accountID uint, email string) error {
	return s.LogInfo(userID, models.LogModuleAccount, "delete", "Mail account deleted", AccountChangeDetails{AccountID: accountID, AccountEmail: email})
}

// LogAccountStatusChanged logs an account enable/disable event
func (s *LogService) LogAccountStatusChanged(userID uint, accountID uint, email string, enabled bool) error {
	action := "disable"
	message := "Mail account disabled"
	if enabled {
		action = "enable"
		message = "Mail account enabled"
	}
	return s.LogInfo(userID, models.LogModuleAccount, action, message, AccountChangeDetails{AccountID: accountID, AccountEmail: email})
}

// LogLogin logs a login attempt
func (s *LogService) LogLogin(userID uint, username, clientIP string, success bool, err error) error {
	details := map[string]interface{}{
		"username":  username,
		"client_ip": clientIP,
		"status":    "success",
	}
	level := models.LogLevelInfo
	message := "User logged in successfully"
	if !success {
		level = models.LogLevelWarn
		message = "Login attempt failed"
		details["status"] = "failed"
		if err != nil {
			details["error_msg"] = err.Error()
		}
	}
	return s.Log(LogEntry{UserID: userID, Level: level, Module: models.LogModuleAuth, Action: "login", Message: message, Details: details})
}

// LogQuery represents query parameters for log retrieval
type LogQuery struct {
	UserID    uint
	Level     string
	Module    string
	Action    string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// LogQueryResult represents the result of a log query
type LogQueryResult struct {
	Total int64
	Logs  []models.Log
}

// QueryLogs retrieves logs based on query parameters
func (s *LogService) QueryLogs(query LogQuery) (*LogQueryResult, error) {
	db := s.db.Model(&models.Log{})

	if query.UserID > 0 {
		db = db.Where("user_id = ?", query.UserID)
	}
	if query.Level != "" {
		db = db.Where("level = ?", query.Level)
	}
	if query.Module != "" {
		db = db.Where("module = ?", query.Module)
	}
	if query.Action != "" {
		db = db.Where("action = ?", query.Action)
	}
	if query.StartTime != nil {
		db = db.Where("created_at >= ?", query.StartTime)
	}
	if query.EndTime != nil {
		db = db.Where("created_at <= ?", query.EndTime)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	offset := (query.Page - 1) * query.Limit

	var logs []models.Log
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &LogQueryResult{Total: total, Logs: logs}, nil
}

// GetRecentLogs retrieves the most recent logs
func (s *LogService) GetRecentLogs(limit int) ([]models.Log, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.Log
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
