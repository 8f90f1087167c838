package handlers

import (
	"net/http"
	"strconv"

	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles cached message requests
type MessageHandler struct {
	messageService *services.MessageService
	syncScheduler  *services.SyncScheduler
	logService     *services.LogService
}

// NewMessageHandler creates a new MessageHandler instance
func NewMessageHandler(messageService *services.MessageService, syncScheduler *services.SyncScheduler, logService *services.LogService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		syncScheduler:  syncScheduler,
		logService:     logService,
	}
}

// ListMessages returns cached messages for the current user
// GET /api/messages?account_id=&direction=&unfiled=&limit=&offset=
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var opts services.ListMessagesOptions
	if v, err := strconv.ParseUint(c.Query("account_id"), 10, 32); err == nil {
		opts.AccountID = uint(v)
	}
	direction := c.Query("direction")
	if direction == "received" || direction == "sent" {
		opts.Direction = direction
	}
	opts.UnfiledOnly = c.Query("unfiled") == "true"
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = v
	}

	messages, total, err := h.messageService.ListMessages(userID, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to list messages",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"messages": messages,
			"total":    total,
		},
	})
}

// GetMessage returns one cached message
// GET /api/messages/:id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	msg, err := h.messageService.GetMessageByIDAndUserID(id, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Message not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    msg,
	})
}

// SyncRequest selects the account to sync
type SyncRequest struct {
	AccountID uint `json:"account_id" binding:"required"`
}

// SyncMessages triggers a manual sync of one account
// POST /api/messages/sync
func (h *MessageHandler) SyncMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SyncRequest
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

	// Claim the account lock so a manual sync never races the scheduler
	if !h.syncScheduler.TryLockAccount(req.AccountID) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SYNC_IN_PROGRESS",
				"message": "Account is already syncing",
			},
		})
		return
	}
	defer h.syncScheduler.UnlockAccount(req.AccountID)

	count, err := h.messageService.SyncAccount(userID, req.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SYNC_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"synced_count": count,
		},
	})
}

// MarkReadRequest sets the read flag
type MarkReadRequest struct {
	Read *bool `json:"read" binding:"required"`
}

// MarkAsRead updates the read flag of a message
// PUT /api/messages/:id/read
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req MarkReadRequest
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

	if err := h.messageService.MarkRead(id, userID, *req.Read); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Message not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
