package handlers

import (
	"errors"
	"net/http"

	"github.com/classeur/core/internal/foldertree"
	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles general settings and folder tree requests
type SettingsHandler struct {
	settingsService *services.SettingsService
	filingService   *services.FilingService
	logService      *services.LogService
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(settingsService *services.SettingsService, filingService *services.FilingService, logService *services.LogService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		filingService:   filingService,
		logService:      logService,
	}
}

// GetGeneralSettings returns the current user's settings, creating the
// default row on first access
// GET /api/settings
func (h *SettingsHandler) GetGeneralSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetGeneralSettings(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UpdateGeneralSettings applies a partial settings update
// PUT /api/settings
func (h *SettingsHandler) UpdateGeneralSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var input services.UpdateGeneralSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	settings, err := h.settingsService.UpdateGeneralSettings(userID, input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSettings) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// GetFolderTree returns the configured folder structure
// GET /api/settings/folder-tree
func (h *SettingsHandler) GetFolderTree(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tree, err := h.settingsService.GetFolderTree(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load folder tree",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tree,
	})
}

// AddFolderNodeRequest describes the node to insert
type AddFolderNodeRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=folder file"`
	Content  string `json:"content"`
}

// AddFolderNode inserts a node into the folder structure
// POST /api/settings/folder-tree/nodes
func (h *SettingsHandler) AddFolderNode(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddFolderNodeRequest
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

	node, err := h.filingService.AddFolderNode(userID, req.ParentID, req.Name, foldertree.NodeType(req.Type), req.Content)
	if err != nil {
		status, code := folderTreeErrorStatus(err)
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
		"data":    node,
	})
}

// RenameFolderNodeRequest carries the new node name
type RenameFolderNodeRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameFolderNode renames a node in the folder structure
// PUT /api/settings/folder-tree/nodes/:id
func (h *SettingsHandler) RenameFolderNode(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RenameFolderNodeRequest
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

	if err := h.filingService.RenameFolderNode(userID, c.Param("id"), req.Name); err != nil {
		status, code := folderTreeErrorStatus(err)
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
	})
}

// RemoveFolderNode deletes a node and the sender associations that
// pointed into it
// DELETE /api/settings/folder-tree/nodes/:id
func (h *SettingsHandler) RemoveFolderNode(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.filingService.RemoveFolderNode(userID, c.Param("id")); err != nil {
		status, code := folderTreeErrorStatus(err)
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
	})
}

func folderTreeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, foldertree.ErrNodeNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, foldertree.ErrNotAFolder), errors.Is(err, foldertree.ErrInvalidName):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
