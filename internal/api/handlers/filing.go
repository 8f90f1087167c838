package handlers

import (
	"errors"
	"net/http"

	"github.com/classeur/core/internal/filing"
	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
)

// FilingHandler handles filing decisions, sender associations and client
// folder creation
type FilingHandler struct {
	filingService *services.FilingService
	senderService *services.SenderService
	logService    *services.LogService
}

// NewFilingHandler creates a new FilingHandler instance
func NewFilingHandler(filingService *services.FilingService, senderService *services.SenderService, logService *services.LogService) *FilingHandler {
	return &FilingHandler{
		filingService: filingService,
		senderService: senderService,
		logService:    logService,
	}
}

// SuggestRequest selects the message to suggest a destination for
type SuggestRequest struct {
	MessageID uint `json:"message_id" binding:"required"`
}

// Suggest proposes a destination folder for a message
// POST /api/filing/suggest
func (h *FilingHandler) Suggest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SuggestRequest
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

	suggestion, err := h.filingService.Suggest(userID, req.MessageID)
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
		"data":    suggestion,
	})
}

// FileRequest carries one filing operation
type FileRequest struct {
	MessageID     uint   `json:"message_id" binding:"required"`
	FolderPath    string `json:"folder_path" binding:"required"`
	PersistChoice bool   `json:"persist_choice"`
}

// File saves a message to disk under the chosen folder
// POST /api/filing/file
func (h *FilingHandler) File(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req FileRequest
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

	result, err := h.filingService.FileMessage(userID, req.MessageID, req.FolderPath, req.PersistChoice)
	if err != nil {
		status := http.StatusInternalServerError
		code := "FILING_FAILED"
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case errors.Is(err, filing.ErrInvalidMessage), errors.Is(err, filing.ErrInvalidPath):
			status = http.StatusBadRequest
			code = "VALIDATION_ERROR"
		case errors.Is(err, services.ErrRootFolderNotSet):
			status = http.StatusPreconditionFailed
			code = "ROOT_FOLDER_NOT_SET"
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

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// CreateClientFolderRequest names the client folder to create
type CreateClientFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateClientFolder creates a client folder with the template deployed
// POST /api/filing/client-folders
func (h *FilingHandler) CreateClientFolder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateClientFolderRequest
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

	path, err := h.filingService.CreateClientFolder(userID, req.Name)
	if err != nil {
		status := http.StatusInternalServerError
		code := "FOLDER_CREATE_FAILED"
		if errors.Is(err, services.ErrRootFolderNotSet) {
			status = http.StatusPreconditionFailed
			code = "ROOT_FOLDER_NOT_SET"
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
		"data": gin.H{
			"path": path,
		},
	})
}

// ListSenderPaths returns every sender association
// GET /api/filing/senders
func (h *FilingHandler) ListSenderPaths(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	entries, err := h.senderService.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to list sender paths",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// UpsertSenderPathRequest sets the folder for a sender
type UpsertSenderPathRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name"`
	FolderPath string `json:"folder_path" binding:"required"`
}

// UpsertSenderPath creates or overwrites a sender association
// PUT /api/filing/senders
func (h *FilingHandler) UpsertSenderPath(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req UpsertSenderPathRequest
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

	if err := h.senderService.Upsert(filing.SenderEntry{
		Email:      req.Email,
		Name:       req.Name,
		FolderPath: req.FolderPath,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to save sender path",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// DeleteSenderPath removes a sender association
// DELETE /api/filing/senders/:email
func (h *FilingHandler) DeleteSenderPath(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	email := c.Param("email")
	if err := h.senderService.Delete(email); err != nil {
		if errors.Is(err, services.ErrSenderPathNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Sender path not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to delete sender path",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
