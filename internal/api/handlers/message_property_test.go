package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/classeur/core/internal/database"
	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/services"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gorm.io/gorm"
)

// The message list must come back newest first, honor the direction
// filter, and hide already-filed messages when asked.

type messageTestEnv struct {
	db             *gorm.DB
	messageService *services.MessageService
	account        *models.MailAccount
	user           *models.User
}

func newMessageTestEnv(prefix string) (*messageTestEnv, func(), error) {
	tempDir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Initialize(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, nil, err
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.RemoveAll(tempDir)
	}

	userService := services.NewUserService(db)
	testUser, err := userService.CreateUser("testuser", "password123", "Test User")
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	accountService := services.NewAccountService(db, []byte("test-encryption-key-32-bytes!!ok"))
	account, err := accountService.CreateAccount(services.CreateAccountInput{
		UserID:   testUser.ID,
		Email:    "test@example.com",
		IMAPHost: "imap.example.com",
		IMAPPort: 993,
		Username: "test@example.com",
		Password: "testpassword",
		UseSSL:   true,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	env := &messageTestEnv{
		db:             db,
		messageService: services.NewMessageService(db, accountService),
		account:        account,
		user:           testUser,
	}

	return env, cleanup, nil
}

func TestProperty_MessageListOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	subjectGen := gen.SliceOfN(10, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})
	countGen := gen.IntRange(2, 10)

	properties.Property("messages_listed_newest_first", prop.ForAll(
		func(count int, subjects []string) bool {
			env, cleanup, err := newMessageTestEnv("classeur_msg_sort_test_*")
			if err != nil {
				return false
			}
			defer cleanup()

			db := env.db
			baseTime := time.Now().Add(-24 * time.Hour)
			for i := 0; i < count && i < len(subjects); i++ {
				msg := &models.Message{
					AccountID:  env.account.ID,
					MessageID:  fmt.Sprintf("<%s-%d@test.com>", subjects[i], i),
					Subject:    subjects[i],
					FromAddr:   "sender@test.com",
					Direction:  models.DirectionReceived,
					ReceivedAt: baseTime.Add(time.Duration(i) * time.Hour),
					Body:       "Test body",
				}
				if err := db.Create(msg).Error; err != nil {
					return false
				}
			}

			rows, _, err := env.messageService.ListMessages(env.user.ID, services.ListMessagesOptions{
				AccountID: env.account.ID,
				Limit:     100,
			})
			if err != nil {
				return false
			}

			for i := 1; i < len(rows); i++ {
				if rows[i-1].ReceivedAt.Before(rows[i].ReceivedAt) {
					return false
				}
			}
			return true
		},
		countGen,
		gen.SliceOfN(10, subjectGen),
	))

	properties.Property("direction_filter_respected", prop.ForAll(
		func(receivedCount, sentCount int) bool {
			env, cleanup, err := newMessageTestEnv("classeur_msg_dir_test_*")
			if err != nil {
				return false
			}
			defer cleanup()

			db := env.db
			now := time.Now()
			for i := 0; i < receivedCount; i++ {
				if err := db.Create(&models.Message{
					AccountID:  env.account.ID,
					MessageID:  fmt.Sprintf("<recv-%d@test.com>", i),
					Direction:  models.DirectionReceived,
					ReceivedAt: now,
				}).Error; err != nil {
					return false
				}
			}
			for i := 0; i < sentCount; i++ {
				if err := db.Create(&models.Message{
					AccountID:  env.account.ID,
					MessageID:  fmt.Sprintf("<sent-%d@test.com>", i),
					Direction:  models.DirectionSent,
					ReceivedAt: now,
				}).Error; err != nil {
					return false
				}
			}

			rows, total, err := env.messageService.ListMessages(env.user.ID, services.ListMessagesOptions{
				Direction: models.DirectionSent,
				Limit:     100,
			})
			if err != nil {
				return false
			}
			if int(total) != sentCount {
				return false
			}
			for _, row := range rows {
				if row.Direction != models.DirectionSent {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
	))

	properties.Property("unfiled_filter_hides_filed_messages", prop.ForAll(
		func(total, filedCount int) bool {
			if filedCount > total {
				filedCount = total
			}

			env, cleanup, err := newMessageTestEnv("classeur_msg_unfiled_test_*")
			if err != nil {
				return false
			}
			defer cleanup()

			db := env.db
			now := time.Now()
			for i := 0; i < total; i++ {
				msg := &models.Message{
					AccountID:  env.account.ID,
					MessageID:  fmt.Sprintf("<msg-%d@test.com>", i),
					Direction:  models.DirectionReceived,
					ReceivedAt: now,
				}
				if i < filedCount {
					msg.FiledPath = "/archive/clients"
					msg.FiledAt = now
				}
				if err := db.Create(msg).Error; err != nil {
					return false
				}
			}

			rows, remaining, err := env.messageService.ListMessages(env.user.ID, services.ListMessagesOptions{
				UnfiledOnly: true,
				Limit:       100,
			})
			if err != nil {
				return false
			}
			if int(remaining) != total-filedCount {
				return false
			}
			for _, row := range rows {
				if row.FiledPath != "" {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 10),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
