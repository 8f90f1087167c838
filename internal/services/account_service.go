package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"github.com/classeur/core/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrAccountNotFound indicates the mail account was not found
	ErrAccountNotFound = errors.New("mail account not found")
	// ErrAccountAlreadyExists indicates the mail account already exists for this user
	ErrAccountAlreadyExists = errors.New("mail account already exists for this user")
	// ErrInvalidAccountData indicates invalid account data
	ErrInvalidAccountData = errors.New("invalid account data")
	// ErrEncryptionFailed indicates secret encryption failed
	ErrEncryptionFailed = errors.New("secret encryption failed")
	// ErrDecryptionFailed indicates secret decryption failed
	ErrDecryptionFailed = errors.New("secret decryption failed")
)

// AccountService handles mail account business logic. Passwords and OAuth
// tokens are stored encrypted with AES-256-GCM.
type AccountService struct {
	db            *gorm.DB
	encryptionKey []byte // 32 bytes for AES-256
	logService    *LogService
}

// NewAccountService creates a new AccountService instance
func NewAccountService(db *gorm.DB, encryptionKey []byte) *AccountService {
	// Ensure key is 32 bytes for AES-256
	key := make([]byte, 32)
	copy(key, encryptionKey)
	return &AccountService{
		db:            db,
		encryptionKey: key,
		logService:    NewLogService(db),
	}
}

// encryptSecret encrypts a secret using AES-256-GCM
func (s *AccountService) encryptSecret(secret string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", ErrEncryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrEncryptionFailed
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ErrEncryptionFailed
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(secret), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decryptSecret decrypts a secret using AES-256-GCM
func (s *AccountService) decryptSecret(encrypted string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// CreateAccountInput represents the input for creating a mail account
type CreateAccountInput struct {
	UserID      uint
	Email       string
	DisplayName string
	IMAPHost    string
	IMAPPort    int
	Username    string
	Password    string
	UseSSL      bool
	SentMailbox string
	SyncDays    int
}

// CreateAccount creates a new mail account for a user
func (s *AccountService) CreateAccount(input CreateAccountInput) (*models.MailAccount, error) {
	if input.Email == "" || input.IMAPHost == "" || input.Username == "" || input.Password == "" {
		return nil, ErrInvalidAccountData
	}

	var existingAccount models.MailAccount
	if err := s.db.Where("user_id = ? AND email = ?", input.UserID, input.Email).First(&existingAccount).Error; err == nil {
		return nil, ErrAccountAlreadyExists
	}

	encryptedPassword, err := s.encryptSecret(input.Password)
	if err != nil {
		return nil, err
	}

	sentMailbox := input.SentMailbox
	if sentMailbox == "" {
		sentMailbox = "Sent"
	}

	account := &models.MailAccount{
		UserID:            input.UserID,
		Email:             input.Email,
		DisplayName:       input.DisplayName,
		IMAPHost:          input.IMAPHost,
		IMAPPort:          input.IMAPPort,
		Username:          input.Username,
		PasswordEncrypted: encryptedPassword,
		UseSSL:            input.UseSSL,
		SentMailbox:       sentMailbox,
		SyncDays:          input.SyncDays,
		AuthType:          models.AuthTypePassword,
		Enabled:           true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, err
	}

	s.logService.LogAccountCreated(input.UserID, account.ID, account.Email)

	return account, nil
}

// GetAccountByID retrieves a mail account by ID
func (s *AccountService) GetAccountByID(id uint) (*models.MailAccount, error) {
	var account models.MailAccount
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByIDAndUserID retrieves a mail account by ID and user ID (for authorization)
func (s *AccountService) GetAccountByIDAndUserID(id, userID uint) (*models.MailAccount, error) {
	var account models.MailAccount
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountsByUserID retrieves all mail accounts for a user
func (s *AccountService) GetAccountsByUserID(userID uint) ([]models.MailAccount, error) {
	var accounts []models.MailAccount
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetEnabledAccountsByUserID retrieves all enabled mail accounts for a user
func (s *AccountService) GetEnabledAccountsByUserID(userID uint) ([]models.MailAccount, error) {
	var accounts []models.MailAccount
	if err := s.db.Where("user_id = ? AND enabled = ?", userID, true).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAllEnabledAccounts retrieves every enabled account across all users,
// used by the background sync scheduler
func (s *AccountService) GetAllEnabledAccounts() ([]models.MailAccount, error) {
	var accounts []models.MailAccount
	if err := s.db.Where("enabled = ?", true).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateAccountInput represents the input for updating a mail account
type UpdateAccountInput struct {
	DisplayName string
	IMAPHost    string
	IMAPPort    int
	Username    string
	Password    string // Optional: only update if not empty
	UseSSL      bool
	SentMailbox string
	SyncDays    *int // pointer distinguishes 0 from unset
}

// UpdateAccount updates a mail account
func (s *AccountService) UpdateAccount(id, userID uint, input UpdateAccountInput) (*models.MailAccount, error) {
	account, err := s.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		account.DisplayName = input.DisplayName
	}
	if input.IMAPHost != "" {
		account.IMAPHost = input.IMAPHost
	}
	if input.IMAPPort > 0 {
		account.IMAPPort = input.IMAPPort
	}
	if input.Username != "" {
		account.Username = input.Username
	}
	if input.SentMailbox != "" {
		account.SentMailbox = input.SentMailbox
	}
	account.UseSSL = input.UseSSL

	if input.SyncDays != nil {
		account.SyncDays = *input.SyncDays
	}

	if input.Password != "" {
		encryptedPassword, err := s.encryptSecret(input.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordEncrypted = encryptedPassword
	}

	if err := s.db.Save(account).Error; err != nil {
		return nil, err
	}

	s.logService.LogAccountUpdated(userID, account.ID, account.Email)

	return account, nil
}

// DeleteAccount deletes a mail account
func (s *AccountService) DeleteAccount(id, userID uint) error {
	account, err := s.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		return err
	}

	email := account.Email

	if err := s.db.Delete(account).Error; err != nil {
		return err
	}

	s.logService.LogAccountDeleted(userID, id, email)

	return nil
}

// SetAccountEnabled sets the enabled status of an account
func (s *AccountService) SetAccountEnabled(id, userID uint, enabled bool) (*models.MailAccount, error) {
	account, err := s.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}

	account.Enabled = enabled

	if err := s.db.Save(account).Error; err != nil {
		return nil, err
	}

	s.logService.LogAccountStatusChanged(userID, account.ID, account.Email, enabled)

	return account, nil
}

// GetDecryptedPassword retrieves the decrypted password for an account
func (s *AccountService) GetDecryptedPassword(account *models.MailAccount) (string, error) {
	return s.decryptSecret(account.PasswordEncrypted)
}

// TestIMAPConnection tests the IMAP connection for an account
func (s *AccountService) TestIMAPConnection(account *models.MailAccount) ConnectionTestResult {
	password, err := s.decryptSecret(account.PasswordEncrypted)
	if err != nil {
		return ConnectionTestResult{
			Success: false,
			Message: "Failed to decrypt password: " + err.Error(),
		}
	}

	addr := buildAddress(account.IMAPHost, account.IMAPPort)
	return testIMAPConnectionInternal(addr, account.Username, password, account.UseSSL)
}

// TestConnectionByID tests the IMAP connection for an account by ID
func (s *AccountService) TestConnectionByID(id, userID uint) (ConnectionTestResult, error) {
	account, err := s.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		return ConnectionTestResult{}, err
	}
	return s.TestIMAPConnection(account), nil
}

// TestConnectionInput represents the input for testing a connection without saving
type TestConnectionInput struct {
	IMAPHost string
	IMAPPort int
	Username string
	Password string
	UseSSL   bool
}

// TestConnectionDirect tests the connection with provided credentials (without saving)
func (s *AccountService) TestConnectionDirect(input TestConnectionInput) ConnectionTestResult {
	addr := buildAddress(input.IMAPHost, input.IMAPPort)
	return testIMAPConnectionInternal(addr, input.Username, input.Password, input.UseSSL)
}

// CreateAccountWithOAuth creates or refreshes a mail account backed by OAuth tokens
func (s *AccountService) CreateAccountWithOAuth(account *models.MailAccount, accessToken, refreshToken string) error {
	encryptedAccess, err := s.encryptSecret(accessToken)
	if err != nil {
		return err
	}
	encryptedRefresh, err := s.encryptSecret(refreshToken)
	if err != nil {
		return err
	}

	var existingAccount models.MailAccount
	if err := s.db.Where("user_id = ? AND email = ?", account.UserID, account.Email).First(&existingAccount).Error; err == nil {
		existingAccount.AuthType = models.AuthTypeOAuth2
		existingAccount.OAuthProvider = account.OAuthProvider
		existingAccount.OAuthAccessToken = encryptedAccess
		existingAccount.OAuthRefreshToken = encryptedRefresh
		existingAccount.OAuthTokenExpiry = account.OAuthTokenExpiry
		existingAccount.Enabled = true

		return s.db.Save(&existingAccount).Error
	}

	account.OAuthAccessToken = encryptedAccess
	account.OAuthRefreshToken = encryptedRefresh

	if err := s.db.Create(account).Error; err != nil {
		return err
	}

	s.logService.LogAccountCreated(account.UserID, account.ID, account.Email)

	return nil
}

// GetDecryptedOAuthTokens returns the decrypted OAuth tokens for an account
func (s *AccountService) GetDecryptedOAuthTokens(account *models.MailAccount) (accessToken, refreshToken string, err error) {
	if account.OAuthAccessToken != "" {
		accessToken, err = s.decryptSecret(account.OAuthAccessToken)
		if err != nil {
			return "", "", err
		}
	}
	if account.OAuthRefreshToken != "" {
		refreshToken, err = s.decryptSecret(account.OAuthRefreshToken)
		if err != nil {
			return "", "", err
		}
	}
	return accessToken, refreshToken, nil
}

// UpdateOAuthTokens updates the OAuth tokens for an account
func (s *AccountService) UpdateOAuthTokens(accountID uint, accessToken, refreshToken string, expiry time.Time) error {
	updates := make(map[string]interface{})

	if accessToken != "" {
		encryptedAccess, err := s.encryptSecret(accessToken)
		if err != nil {
			return err
		}
		updates["oauth_access_token"] = encryptedAccess
	}

	if refreshToken != "" {
		encryptedRefresh, err := s.encryptSecret(refreshToken)
		if err != nil {
			return err
		}
		updates["oauth_refresh_token"] = encryptedRefresh
	}

	if !expiry.IsZero() {
		updates["oauth_token_expiry"] = expiry
	}

	return s.db.Model(&models.MailAccount{}).Where("id = ?", accountID).Updates(updates).Error
}
