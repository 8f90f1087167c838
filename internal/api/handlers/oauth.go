package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/classeur/core/internal/database/models"
	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateTTL = 10 * time.Minute

// OAuthHandler runs the Google OAuth2 flow for mail accounts
type OAuthHandler struct {
	accountService *services.AccountService
	stateStore     *stateStore
}

// stateStore holds pending OAuth state tokens
type stateStore struct {
	mu     sync.RWMutex
	states map[string]*oauthState
}

type oauthState struct {
	UserID      uint
	Provider    string
	DisplayName string
	CreatedAt   time.Time
}

// NewOAuthHandler creates a new OAuthHandler instance
func NewOAuthHandler(accountService *services.AccountService) *OAuthHandler {
	return &OAuthHandler{
		accountService: accountService,
		stateStore: &stateStore{
			states: make(map[string]*oauthState),
		},
	}
}

func googleOAuthConfig() *oauth2.Config {
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://localhost:8080/api/oauth/google/callback"
	}
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://mail.google.com/",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GetGoogleAuthURL returns the Google OAuth authorization URL
// GET /api/oauth/google/auth
func (h *OAuthHandler) GetGoogleAuthURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	config := googleOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OAUTH_NOT_CONFIGURED",
				"message": "Google OAuth is not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.",
			},
		})
		return
	}

	state, err := generateState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATE_GENERATION_FAILED",
				"message": "Failed to generate state token",
			},
		})
		return
	}

	h.stateStore.mu.Lock()
	h.stateStore.states[state] = &oauthState{
		UserID:      userID,
		Provider:    "google",
		DisplayName: c.Query("display_name"),
		CreatedAt:   time.Now(),
	}
	h.stateStore.mu.Unlock()

	go h.cleanupOldStates()

	// Offline access so Google returns a refresh token
	url := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"auth_url": url,
		},
	})
}

// GoogleCallback finishes the Google OAuth flow and stores the account
// GET /api/oauth/google/callback
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	if errParam := c.Query("error"); errParam != "" {
		c.Redirect(http.StatusFound, "/?oauth_error="+errParam)
		return
	}
	if code == "" || state == "" {
		c.Redirect(http.StatusFound, "/?oauth_error=missing_params")
		return
	}

	h.stateStore.mu.Lock()
	pending, exists := h.stateStore.states[state]
	delete(h.stateStore.states, state)
	h.stateStore.mu.Unlock()

	if !exists {
		c.Redirect(http.StatusFound, "/?oauth_error=invalid_state")
		return
	}
	if time.Since(pending.CreatedAt) > stateTTL {
		c.Redirect(http.StatusFound, "/?oauth_error=state_expired")
		return
	}

	config := googleOAuthConfig()
	token, err := config.Exchange(context.Background(), code)
	if err != nil {
		c.Redirect(http.StatusFound, "/?oauth_error=token_exchange_failed")
		return
	}

	email, err := getGoogleUserEmail(token.AccessToken)
	if err != nil {
		c.Redirect(http.StatusFound, "/?oauth_error=get_email_failed")
		return
	}

	displayName := pending.DisplayName
	if displayName == "" {
		displayName = email
	}
	account := &models.MailAccount{
		UserID:           pending.UserID,
		Email:            email,
		DisplayName:      displayName,
		IMAPHost:         "imap.gmail.com",
		IMAPPort:         993,
		Username:         email,
		UseSSL:           true,
		Enabled:          true,
		SentMailbox:      "[Gmail]/Sent Mail",
		SyncDays:         0,
		AuthType:         models.AuthTypeOAuth2,
		OAuthProvider:    "google",
		OAuthTokenExpiry: token.Expiry,
	}

	if err := h.accountService.CreateAccountWithOAuth(account, token.AccessToken, token.RefreshToken); err != nil {
		c.Redirect(http.StatusFound, "/?oauth_error=save_account_failed")
		return
	}

	c.Redirect(http.StatusFound, "/?oauth_success=google&email="+email)
}

// getGoogleUserEmail resolves the Google account's address from the
// userinfo endpoint
func getGoogleUserEmail(accessToken string) (string, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get user info: status %d", resp.StatusCode)
	}

	var userInfo struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", err
	}
	return userInfo.Email, nil
}

func (h *OAuthHandler) cleanupOldStates() {
	h.stateStore.mu.Lock()
	defer h.stateStore.mu.Unlock()

	for state, pending := range h.stateStore.states {
		if time.Since(pending.CreatedAt) > stateTTL {
			delete(h.stateStore.states, state)
		}
	}
}

// GetOAuthConfig reports which OAuth providers are available. The route is
// reachable with the API key alone so a login screen can decide whether to
// offer the Google button.
// GET /api/oauth/config
func (h *OAuthHandler) GetOAuthConfig(c *gin.Context) {
	config := googleOAuthConfig()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"google_enabled": config.ClientID != "" && config.ClientSecret != "",
		},
	})
}
