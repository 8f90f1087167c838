package handlers

import (
	"net/http"
	"strconv"

	"github.com/classeur/core/internal/api/middleware"
	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles mail account related requests
type AccountHandler struct {
	accountService *services.AccountService
	logService     *services.LogService
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(accountService *services.AccountService, logService *services.LogService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logService:     logService,
	}
}

// requireUserID extracts the authenticated user id, writing the auth
// failure envelope when absent
func requireUserID(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH_FAILED",
				"message": "User not authenticated",
			},
		})
		return 0, false
	}
	return userID, true
}

// parseIDParam parses the :id path parameter, writing the validation
// failure envelope when malformed
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid id parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// CreateAccountRequest represents the request to create a mail account
type CreateAccountRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
	IMAPHost    string `json:"imap_host" binding:"required"`
	IMAPPort    int    `json:"imap_port" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	UseSSL      bool   `json:"use_ssl"`
	SentMailbox string `json:"sent_mailbox"`
	SyncDays    int    `json:"sync_days"`
}

// ListAccounts returns all mail accounts for the current user
// GET /api/accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.GetAccountsByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to list accounts",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    accounts,
	})
}

// CreateAccount creates a new mail account
// POST /api/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request body",
				"details": err.Error(),
			},
		})
		return
	}

	account, err := h.accountService.CreateAccount(services.CreateAccountInput{
		UserID:      userID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		IMAPHost:    req.IMAPHost,
		IMAPPort:    req.IMAPPort,
		Username:    req.Username,
		Password:    req.Password,
		UseSSL:      req.UseSSL,
		SentMailbox: req.SentMailbox,
		SyncDays:    req.SyncDays,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "INTERNAL_ERROR"
		if err == services.ErrAccountAlreadyExists {
			status = http.StatusConflict
			code = "ALREADY_EXISTS"
		} else if err == services.ErrInvalidAccountData {
			status = http.StatusBadRequest
			code = "VALIDATION_ERROR"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    account,
	})
}

// GetAccount returns one mail account
// GET /api/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Account not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
	})
}

// UpdateAccountRequest represents the request to update a mail account
type UpdateAccountRequest struct {
	DisplayName string `json:"display_name"`
	IMAPHost    string `json:"imap_host"`
	IMAPPort    int    `json:"imap_port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	UseSSL      bool   `json:"use_ssl"`
	SentMailbox string `json:"sent_mailbox"`
	SyncDays    *int   `json:"sync_days"`
}

// UpdateAccount updates a mail account
// PUT /api/accounts/:id
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request body",
				"details": err.Error(),
			},
		})
		return
	}

	account, err := h.accountService.UpdateAccount(id, userID, services.UpdateAccountInput{
		DisplayName: req.DisplayName,
		IMAPHost:    req.IMAPHost,
		IMAPPort:    req.IMAPPort,
		Username:    req.Username,
		Password:    req.Password,
		UseSSL:      req.UseSSL,
		SentMailbox: req.SentMailbox,
		SyncDays:    req.SyncDays,
	})
	if err != nil {
		if err == services.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Account not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update account",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
	})
}

// DeleteAccount deletes a mail account
// DELETE /api/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(id, userID); err != nil {
		if err == services.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Account not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to delete account",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account deleted",
	})
}

// TestConnection tests the stored credentials of an account
// POST /api/accounts/:id/test
func (h *AccountHandler) TestConnection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.accountService.TestConnectionByID(id, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Account not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// TestConnectionDirectRequest represents credentials to test without saving
type TestConnectionDirectRequest struct {
	IMAPHost string `json:"imap_host" binding:"required"`
	IMAPPort int    `json:"imap_port" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	UseSSL   bool   `json:"use_ssl"`
}

// TestConnectionDirect tests credentials without saving them
// POST /api/accounts/test
func (h *AccountHandler) TestConnectionDirect(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req TestConnectionDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request body",
				"details": err.Error(),
			},
		})
		return
	}

	result := h.accountService.TestConnectionDirect(services.TestConnectionInput{
		IMAPHost: req.IMAPHost,
		IMAPPort: req.IMAPPort,
		Username: req.Username,
		Password: req.Password,
		UseSSL:   req.UseSSL,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// EnableAccount enables a mail account
// PUT /api/accounts/:id/enable
func (h *AccountHandler) EnableAccount(c *gin.Context) {
	h.setEnabled(c, true)
}

// DisableAccount disables a mail account
// PUT /api/accounts/:id/disable
func (h *AccountHandler) DisableAccount(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *AccountHandler) setEnabled(c *gin.Context, enabled bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	account, err := h.accountService.SetAccountEnabled(id, userID, enabled)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Account not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    account,
	})
}
