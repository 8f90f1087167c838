package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/classeur/core/internal/services"
	"github.com/gin-gonic/gin"
)

// LogHandler exposes the persisted log rows
type LogHandler struct {
	logService *services.LogService
}

// NewLogHandler creates a new LogHandler instance
func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// QueryLogs returns the current user's log rows, newest first
// GET /api/logs?level=&module=&action=&start=&end=&page=&limit=
//
// start and end accept RFC 3339 timestamps.
func (h *LogHandler) QueryLogs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	query := services.LogQuery{
		UserID: userID,
		Level:  c.Query("level"),
		Module: c.Query("module"),
		Action: c.Query("action"),
	}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid start time",
					"details": err.Error(),
				},
			})
			return
		}
		query.StartTime = &t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid end time",
					"details": err.Error(),
				},
			})
			return
		}
		query.EndTime = &t
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		query.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.Limit = v
	}

	result, err := h.logService.QueryLogs(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to query logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"logs":  result.Logs,
			"total": result.Total,
		},
	})
}

// GetRecentLogs returns the most recent log rows across all users
// GET /api/logs/recent?limit=
func (h *LogHandler) GetRecentLogs(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	logs, err := h.logService.GetRecentLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load recent logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"logs": logs,
		},
	})
}
