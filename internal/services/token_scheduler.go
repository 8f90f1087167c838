package services

import (
	"log"
	"time"

	"github.com/classeur/core/internal/database/models"
	"gorm.io/gorm"
)

// TokenScheduler refreshes OAuth access tokens before they expire
type TokenScheduler struct {
	db             *gorm.DB
	messageService *MessageService
	interval       time.Duration
	stopChan       chan struct{}
	running        bool
}

// NewTokenScheduler creates a new token scheduler
func NewTokenScheduler(db *gorm.DB, messageService *MessageService, interval time.Duration) *TokenScheduler {
	return &TokenScheduler{
		db:             db,
		messageService: messageService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the token refresh scheduler
func (s *TokenScheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	go s.run()
	log.Printf("[TokenScheduler] Started with interval %v", s.interval)
}

// Stop stops the token refresh scheduler
func (s *TokenScheduler) Stop() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.running = false
	log.Println("[TokenScheduler] Stopped")
}

func (s *TokenScheduler) run() {
	s.refreshExpiringTokens()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshExpiringTokens()
		case <-s.stopChan:
			return
		}
	}
}

// refreshExpiringTokens refreshes tokens expiring in the next 10 minutes
func (s *TokenScheduler) refreshExpiringTokens() {
	var accounts []models.MailAccount
	threshold := time.Now().Add(10 * time.Minute)

	err := s.db.Where(
		"auth_type = ? AND oauth_provider = ? AND enabled = ? AND oauth_token_expiry < ?",
		models.AuthTypeOAuth2, "google", true, threshold,
	).Find(&accounts).Error

	if err != nil {
		log.Printf("[TokenScheduler] Error finding accounts: %v", err)
		return
	}

	if len(accounts) == 0 {
		return
	}

	log.Printf("[TokenScheduler] Found %d accounts with expiring tokens", len(accounts))

	for _, account := range accounts {
		_, err := s.messageService.refreshOAuthToken(&account)
		if err != nil {
			log.Printf("[TokenScheduler] Failed to refresh token for %s: %v", account.Email, err)
		} else {
			log.Printf("[TokenScheduler] Refreshed token for %s", account.Email)
		}
	}
}
