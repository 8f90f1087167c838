package services

import (
	"log"
	"sync"
	"time"

	"github.com/classeur/core/internal/database/models"
	"gorm.io/gorm"
)

// SyncScheduler polls every enabled account on a fixed interval
type SyncScheduler struct {
	db             *gorm.DB
	messageService *MessageService
	logService     *LogService
	interval       time.Duration
	stopChan       chan struct{}
	running        bool
	mu             sync.Mutex
	syncing        sync.Mutex // keeps sync cycles from overlapping
	accountLocks   sync.Map   // per-account locks against concurrent sync
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(db *gorm.DB, messageService *MessageService, logService *LogService, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		db:             db,
		messageService: messageService,
		logService:     logService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the automatic sync process
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[SyncScheduler] Starting with interval: %v", s.interval)

	go func() {
		// Give the service a moment to finish starting before the first sync
		select {
		case <-time.After(10 * time.Second):
			log.Println("[SyncScheduler] Running first sync...")
			s.syncAllAccounts()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncAllAccounts()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Stopping")
				return
			}
		}
	}()
}

// Stop stops the automatic sync process
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopChan)
	s.running = false
}

// IsAccountSyncing reports whether an account is mid-sync
func (s *SyncScheduler) IsAccountSyncing(accountID uint) bool {
	_, loaded := s.accountLocks.Load(accountID)
	return loaded
}

// TryLockAccount claims an account for syncing. Manual sync uses it to
// avoid racing the scheduler.
func (s *SyncScheduler) TryLockAccount(accountID uint) bool {
	_, loaded := s.accountLocks.LoadOrStore(accountID, true)
	return !loaded
}

// UnlockAccount releases an account claimed with TryLockAccount
func (s *SyncScheduler) UnlockAccount(accountID uint) {
	s.accountLocks.Delete(accountID)
}

// syncAllAccounts syncs all enabled accounts concurrently
func (s *SyncScheduler) syncAllAccounts() {
	// Skip this cycle if the previous one is still running
	if !s.syncing.TryLock() {
		log.Println("[SyncScheduler] Previous sync still running, skipping this cycle")
		return
	}
	defer s.syncing.Unlock()

	var accounts []models.MailAccount
	if err := s.db.Where("enabled = ?", true).Find(&accounts).Error; err != nil {
		log.Printf("[SyncScheduler] Failed to get accounts: %v", err)
		return
	}

	if len(accounts) == 0 {
		return
	}

	log.Printf("[SyncScheduler] Syncing %d accounts", len(accounts))

	var wg sync.WaitGroup
	for _, account := range accounts {
		if !s.TryLockAccount(account.ID) {
			log.Printf("[SyncScheduler] Account %d (%s) is already syncing, skipping", account.ID, account.Email)
			continue
		}

		wg.Add(1)
		go func(acc models.MailAccount) {
			defer wg.Done()
			defer s.UnlockAccount(acc.ID)

			s.syncOneAccount(acc)
		}(account)
	}
	wg.Wait()
}

// syncOneAccount syncs a single account with exponential-backoff retries
func (s *SyncScheduler) syncOneAccount(account models.MailAccount) {
	const maxRetries = 2
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[SyncScheduler] Account %d retry %d/%d after %v", account.ID, attempt, maxRetries, backoff)

			select {
			case <-time.After(backoff):
			case <-s.stopChan:
				return
			}
		}

		count, err := s.messageService.SyncAccount(account.UserID, account.ID)
		if err == nil {
			if count > 0 {
				log.Printf("[SyncScheduler] Account %d (%s) synced %d new messages", account.ID, account.Email, count)
				s.logService.LogInfo(account.UserID, models.LogModuleMail, "auto_sync", "Auto sync completed", map[string]interface{}{
					"account_id":   account.ID,
					"synced_count": count,
				})
			}
			return
		}

		lastErr = err
		log.Printf("[SyncScheduler] Account %d (%s) sync attempt %d failed: %v", account.ID, account.Email, attempt+1, err)
	}

	log.Printf("[SyncScheduler] Account %d (%s) sync failed after %d attempts: %v", account.ID, account.Email, maxRetries+1, lastErr)
	s.logService.LogWarn(account.UserID, models.LogModuleMail, "auto_sync", "Auto sync failed", map[string]interface{}{
		"account_id": account.ID,
		"error":      lastErr.Error(),
		"retries":    maxRetries,
	})
}
