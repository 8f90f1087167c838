package services

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	id "github.com/emersion/go-imap-id"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/filing"
	"gorm.io/gorm"
)

var (
	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")
	// ErrIMAPConnectionFailed indicates IMAP connection failed
	ErrIMAPConnectionFailed = errors.New("IMAP connection failed")
)

// MessageService syncs mail from IMAP and manages the local message cache
type MessageService struct {
	db             *gorm.DB
	accountService *AccountService
	logService     *LogService
}

// NewMessageService creates a new MessageService instance
func NewMessageService(db *gorm.DB, accountService *AccountService) *MessageService {
	return &MessageService{
		db:             db,
		accountService: accountService,
		logService:     NewLogService(db),
	}
}

// FetchedMessage represents a message fetched from IMAP
type FetchedMessage struct {
	UID            uint32
	MessageID      string
	Subject        string
	From           filing.Party
	To             []filing.Party
	Date           time.Time
	Importance     string
	Body           string
	HTMLBody       string
	HasAttachments bool
	RawContent     []byte
}

// connectIMAP establishes an authenticated IMAP session for the account
func (s *MessageService) connectIMAP(account *models.MailAccount) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", account.IMAPHost, account.IMAPPort)
	var c *client.Client

	dialer := &net.Dialer{Timeout: 10 * time.Second}

	if account.UseSSL {
		tlsConfig := &tls.Config{ServerName: account.IMAPHost}
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
		c, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}
	}

	// Full sync of a large mailbox can run for minutes
	c.Timeout = 5 * time.Minute

	// Some providers reject LOGIN until the client identifies itself
	if ok, _ := c.Support("ID"); ok {
		idClient := id.NewClient(c)
		idClient.ID(id.ID{
			id.FieldName:    "Classeur",
			id.FieldVersion: "1.0.0",
			id.FieldVendor:  "Classeur",
		})
	}

	if account.AuthType == models.AuthTypeOAuth2 {
		accessToken, _, err := s.accountService.GetDecryptedOAuthTokens(account)
		if err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: failed to get OAuth tokens: %v", ErrIMAPConnectionFailed, err)
		}

		if account.OAuthTokenExpiry.Before(time.Now()) {
			accessToken, err = s.refreshOAuthToken(account)
			if err != nil {
				c.Logout()
				return nil, fmt.Errorf("%w: failed to refresh OAuth token: %v", ErrIMAPConnectionFailed, err)
			}
		}

		saslClient := NewXOAuth2Client(account.Username, accessToken)
		if err := c.Authenticate(saslClient); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: XOAUTH2 authentication failed: %v", ErrIMAPConnectionFailed, err)
		}
	} else {
		password, err := s.accountService.GetDecryptedPassword(account)
		if err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: %v", ErrIMAPConnectionFailed, err)
		}

		if err := c.Login(account.Username, password); err != nil {
			c.Logout()
			return nil, fmt.Errorf("%w: login failed: %v", ErrIMAPConnectionFailed, err)
		}
	}

	return c, nil
}

// XOAuth2Client implements the SASL XOAUTH2 mechanism
type XOAuth2Client struct {
	Username    string
	AccessToken string
}

// NewXOAuth2Client creates a new XOAUTH2 SASL client
func NewXOAuth2Client(username, accessToken string) *XOAuth2Client {
	return &XOAuth2Client{
		Username:    username,
		AccessToken: accessToken,
	}
}

// Start begins the XOAUTH2 authentication
func (c *XOAuth2Client) Start() (mech string, ir []byte, err error) {
	// XOAUTH2 initial response: "user=" + user + "\x01auth=Bearer " + token + "\x01\x01"
	ir = []byte(fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", c.Username, c.AccessToken))
	return "XOAUTH2", ir, nil
}

// Next handles server challenges (XOAUTH2 has none)
func (c *XOAuth2Client) Next(challenge []byte) (response []byte, err error) {
	return nil, nil
}

// refreshOAuthToken refreshes the OAuth access token using the refresh token
func (s *MessageService) refreshOAuthToken(account *models.MailAccount) (string, error) {
	_, refreshToken, err := s.accountService.GetDecryptedOAuthTokens(account)
	if err != nil {
		return "", err
	}

	if refreshToken == "" {
		return "", fmt.Errorf("no refresh token available")
	}

	if account.OAuthProvider == "google" {
		return s.refreshGoogleToken(account, refreshToken)
	}

	return "", fmt.Errorf("unsupported OAuth provider: %s", account.OAuthProvider)
}

// refreshGoogleToken refreshes a Google OAuth token
func (s *MessageService) refreshGoogleToken(account *models.MailAccount, refreshToken string) (string, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("Google OAuth credentials not configured")
	}

	resp, err := http.PostForm("https://oauth2.googleapis.com/token", map[string][]string{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}

	expiry := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if err := s.accountService.UpdateOAuthTokens(account.ID, tokenResp.AccessToken, "", expiry); err != nil {
		return "", err
	}

	return tokenResp.AccessToken, nil
}

// SyncAccount fetches new mail from the account's inbox and sent mailbox
// and caches it locally. Returns the number of messages saved.
func (s *MessageService) SyncAccount(userID, accountID uint) (int, error) {
	account, err := s.accountService.GetAccountByIDAndUserID(accountID, userID)
	if err != nil {
		return 0, err
	}

	if !account.Enabled {
		return 0, errors.New("account is disabled")
	}

	syncStartedAt := time.Now()

	c, err := s.connectIMAP(account)
	if err != nil {
		s.logService.LogError(userID, models.LogModuleMail, "sync", "IMAP connection failed", map[string]interface{}{
			"account_id": accountID,
			"error":      err.Error(),
		})
		return 0, err
	}
	defer c.Logout()

	saved := 0

	inboxSaved, err := s.syncMailbox(c, account, "INBOX", models.DirectionReceived)
	if err != nil {
		return saved, err
	}
	saved += inboxSaved

	// The sent mailbox may not exist on every provider; its failure does
	// not abort the inbox result
	sentMailbox := account.SentMailbox
	if sentMailbox == "" {
		sentMailbox = "Sent"
	}
	sentSaved, err := s.syncMailbox(c, account, sentMailbox, models.DirectionSent)
	if err != nil {
		s.logService.LogWarn(account.UserID, models.LogModuleMail, "sync", "Sent mailbox sync failed", map[string]interface{}{
			"account_id": accountID,
			"mailbox":    sentMailbox,
			"error":      err.Error(),
		})
	} else {
		saved += sentSaved
	}

	s.db.Model(&models.MailAccount{}).Where("id = ?", accountID).Update("last_sync_at", syncStartedAt)

	s.logService.LogInfo(userID, models.LogModuleMail, "sync", "Mail sync completed", map[string]interface{}{
		"account_id":  accountID,
		"saved_count": saved,
	})

	return saved, nil
}

// syncMailbox fetches new messages from one mailbox and caches them with
// the given direction
func (s *MessageService) syncMailbox(c *client.Client, account *models.MailAccount, mailbox, direction string) (int, error) {
	userID := account.UserID

	mbox, err := c.Select(mailbox, false)
	if err != nil {
		return 0, fmt.Errorf("failed to select %s: %v", mailbox, err)
	}

	if mbox.Messages == 0 {
		return 0, nil
	}

	criteria := imap.NewSearchCriteria()
	if account.SyncDays == -1 {
		// Fetch everything
	} else if account.SyncDays == 0 {
		if !account.LastSyncAt.IsZero() {
			sinceDate := account.LastSyncAt.AddDate(0, 0, -1)
			criteria.Since = time.Date(sinceDate.Year(), sinceDate.Month(), sinceDate.Day(), 0, 0, 0, 0, time.UTC)
		}
	} else {
		sinceDate := time.Now().AddDate(0, 0, -account.SyncDays)
		criteria.Since = time.Date(sinceDate.Year(), sinceDate.Month(), sinceDate.Day(), 0, 0, 0, 0, time.UTC)
	}

	seqNums, err := c.Search(criteria)
	if err != nil || len(seqNums) == 0 {
		seqNums = make([]uint32, mbox.Messages)
		for i := uint32(1); i <= mbox.Messages; i++ {
			seqNums[i-1] = i
		}
	}

	const maxSyncMessages = 200
	if len(seqNums) > maxSyncMessages {
		seqNums = seqNums[len(seqNums)-maxSyncMessages:]
	}

	// Step 1: envelopes only, to know which messages are new
	type msgMeta struct {
		uid       uint32
		messageID string
		envelope  *imap.Envelope
	}
	var allMetas []msgMeta

	const batchSize = 10
	for i := 0; i < len(seqNums); i += batchSize {
		batchEnd := i + batchSize
		if batchEnd > len(seqNums) {
			batchEnd = len(seqNums)
		}
		batch := seqNums[i:batchEnd]

		seqSet := new(imap.SeqSet)
		seqSet.AddNum(batch...)

		items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope}
		messages := make(chan *imap.Message, batchSize)
		done := make(chan error, 1)

		go func() {
			done <- c.Fetch(seqSet, items, messages)
		}()

		for msg := range messages {
			if msg == nil || msg.Envelope == nil {
				continue
			}
			messageID := msg.Envelope.MessageId
			if messageID == "" {
				messageID = fmt.Sprintf("uid:%s:%d", mailbox, msg.Uid)
			}
			allMetas = append(allMetas, msgMeta{
				uid:       msg.Uid,
				messageID: messageID,
				envelope:  msg.Envelope,
			})
		}
		<-done
	}

	// Step 2: drop messages the cache already holds
	var allMessageIDs []string
	for _, meta := range allMetas {
		allMessageIDs = append(allMessageIDs, meta.messageID)
	}

	existingIDs := make(map[string]bool)
	const dbBatchSize = 500
	for i := 0; i < len(allMessageIDs); i += dbBatchSize {
		end := i + dbBatchSize
		if end > len(allMessageIDs) {
			end = len(allMessageIDs)
		}
		var existing []models.Message
		s.db.Select("message_id").Where("account_id = ? AND message_id IN ?", account.ID, allMessageIDs[i:end]).Find(&existing)
		for _, e := range existing {
			existingIDs[e.MessageID] = true
		}
	}

	var newMetas []msgMeta
	for _, meta := range allMetas {
		if !existingIDs[meta.messageID] {
			newMetas = append(newMetas, meta)
		}
	}

	if len(newMetas) == 0 {
		return 0, nil
	}

	const maxBodyFetch = 50
	if len(newMetas) > maxBodyFetch {
		newMetas = newMetas[len(newMetas)-maxBodyFetch:]
	}

	// Step 3: full bodies for the new messages, same connection
	var uidsToFetch []uint32
	for _, meta := range newMetas {
		uidsToFetch = append(uidsToFetch, meta.uid)
	}

	section := &imap.BodySectionName{Peek: true}
	uidToBody := make(map[uint32][]byte)

	for i := 0; i < len(uidsToFetch); i += batchSize {
		batchEnd := i + batchSize
		if batchEnd > len(uidsToFetch) {
			batchEnd = len(uidsToFetch)
		}
		batch := uidsToFetch[i:batchEnd]

		uidSet := new(imap.SeqSet)
		uidSet.AddNum(batch...)

		items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}
		messages := make(chan *imap.Message, batchSize)
		done := make(chan error, 1)

		go func() {
			done <- c.UidFetch(uidSet, items, messages)
		}()

		for msg := range messages {
			if msg == nil {
				continue
			}
			for _, literal := range msg.Body {
				content, err := io.ReadAll(literal)
				if err == nil && len(content) > 0 {
					uidToBody[msg.Uid] = content
				}
			}
		}

		if err := <-done; err != nil {
			s.logService.LogWarn(userID, models.LogModuleMail, "sync", "UidFetch error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Step 4: parse and save
	saved := 0
	for _, meta := range newMetas {
		fetched := FetchedMessage{
			UID:        meta.uid,
			MessageID:  meta.messageID,
			Subject:    meta.envelope.Subject,
			Date:       meta.envelope.Date,
			Importance: "normal",
		}

		if len(meta.envelope.From) > 0 {
			fetched.From = partyFromAddress(meta.envelope.From[0])
		}
		for _, addr := range meta.envelope.To {
			fetched.To = append(fetched.To, partyFromAddress(addr))
		}

		if body, ok := uidToBody[meta.uid]; ok && len(body) > 0 {
			fetched.RawContent = body

			r := bytes.NewReader(body)
			entity, err := message.Read(r)
			if err != nil {
				r.Seek(0, io.SeekStart)
				m, err := mail.ReadMessage(r)
				if err == nil {
					fetched.Importance = parseImportance(m.Header)
					b, _ := io.ReadAll(m.Body)
					fetched.Body = string(b)
				}
			} else {
				fetched.Importance = importanceFromHeader(entity.Header.Get("X-Priority"), entity.Header.Get("Importance"))
				s.parseMessageEntity(entity, &fetched)
			}
		}

		if err := s.saveFetched(account.ID, direction, &fetched); err != nil {
			s.logService.LogError(userID, models.LogModuleMail, "sync", "Failed to save message", map[string]interface{}{
				"message_id": fetched.MessageID,
				"error":      err.Error(),
			})
			continue
		}
		saved++
	}

	return saved, nil
}

// saveFetched converts a fetched message into a cache row
func (s *MessageService) saveFetched(accountID uint, direction string, fetched *FetchedMessage) error {
	toJSON, _ := json.Marshal(fetched.To)

	row := &models.Message{
		AccountID:      accountID,
		MessageID:      fetched.MessageID,
		Subject:        fetched.Subject,
		FromName:       fetched.From.Name,
		FromAddr:       fetched.From.Address,
		ToAddrs:        string(toJSON),
		Direction:      direction,
		SentAt:         fetched.Date,
		ReceivedAt:     fetched.Date,
		Importance:     fetched.Importance,
		HasAttachments: fetched.HasAttachments,
		IsRead:         false,
		Body:           fetched.Body,
		HTMLBody:       fetched.HTMLBody,
		RawContent:     fetched.RawContent,
	}

	return s.db.Create(row).Error
}

// parseMessageEntity recursively walks a MIME entity collecting text bodies
// and flagging attachments
func (s *MessageService) parseMessageEntity(entity *message.Entity, fetched *FetchedMessage) {
	mediaType, params, _ := entity.Header.ContentType()

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := entity.MultipartReader()
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			s.parseMessageEntity(part, fetched)
		}
	} else if mediaType == "text/plain" && fetched.Body == "" {
		body, _ := io.ReadAll(entity.Body)
		fetched.Body = string(body)
	} else if mediaType == "text/html" && fetched.HTMLBody == "" {
		body, _ := io.ReadAll(entity.Body)
		fetched.HTMLBody = string(body)
	} else {
		disposition := entity.Header.Get("Content-Disposition")
		if strings.HasPrefix(disposition, "attachment") || params["name"] != "" {
			fetched.HasAttachments = true
		} else if !strings.HasPrefix(mediaType, "text/") && mediaType != "" {
			fetched.HasAttachments = true
		}
	}
}

// partyFromAddress converts an IMAP address to a name/address pair
func partyFromAddress(addr *imap.Address) filing.Party {
	return filing.Party{
		Name:    addr.PersonalName,
		Address: fmt.Sprintf("%s@%s", addr.MailboxName, addr.HostName),
	}
}

// parseImportance reads priority headers from a plain mail message
func parseImportance(header mail.Header) string {
	return importanceFromHeader(header.Get("X-Priority"), header.Get("Importance"))
}

// importanceFromHeader maps X-Priority / Importance headers to an
// importance level. 1 and 2 are high, 4 and 5 are low, everything else
// is normal.
func importanceFromHeader(xPriority, importance string) string {
	switch strings.ToLower(strings.TrimSpace(importance)) {
	case "high":
		return "high"
	case "low":
		return "low"
	}

	p := strings.TrimSpace(xPriority)
	if len(p) > 0 {
		switch p[0] {
		case '1', '2':
			return "high"
		case '4', '5':
			return "low"
		}
	}
	return "normal"
}

// GetMessageByIDAndUserID retrieves a cached message, verifying ownership
// through the account
func (s *MessageService) GetMessageByIDAndUserID(id, userID uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if _, err := s.accountService.GetAccountByIDAndUserID(msg.AccountID, userID); err != nil {
		return nil, ErrMessageNotFound
	}

	return &msg, nil
}

// ListMessagesOptions filters the message list
type ListMessagesOptions struct {
	AccountID   uint
	Direction   string // empty means both
	UnfiledOnly bool
	Limit       int
	Offset      int
}

// ListMessages returns cached messages for a user, newest first
func (s *MessageService) ListMessages(userID uint, opts ListMessagesOptions) ([]models.Message, int64, error) {
	accounts, err := s.accountService.GetAccountsByUserID(userID)
	if err != nil {
		return nil, 0, err
	}

	accountIDs := make([]uint, 0, len(accounts))
	for _, a := range accounts {
		if opts.AccountID != 0 && a.ID != opts.AccountID {
			continue
		}
		accountIDs = append(accountIDs, a.ID)
	}
	if len(accountIDs) == 0 {
		return []models.Message{}, 0, nil
	}

	query := s.db.Model(&models.Message{}).Where("account_id IN ?", accountIDs)
	if opts.Direction != "" {
		query = query.Where("direction = ?", opts.Direction)
	}
	if opts.UnfiledOnly {
		query = query.Where("filed_path = ''")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.Message
	if err := query.Order("received_at desc").Limit(limit).Offset(opts.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// MarkRead updates the read flag of a message
func (s *MessageService) MarkRead(id, userID uint, read bool) error {
	msg, err := s.GetMessageByIDAndUserID(id, userID)
	if err != nil {
		return err
	}
	return s.db.Model(msg).Update("is_read", read).Error
}

// MarkFiled records where a message was filed
func (s *MessageService) MarkFiled(id uint, folderPath string) error {
	return s.db.Model(&models.Message{}).Where("id = ?", id).Updates(map[string]interface{}{
		"filed_path": folderPath,
		"filed_at":   time.Now(),
	}).Error
}
