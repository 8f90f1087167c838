package services

import (
	"testing"

	"github.com/classeur/core/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogsFiltersByUserAndModule(t *testing.T) {
	logs := NewLogService(newTestDB(t))

	require.NoError(t, logs.LogInfo(1, models.LogModuleFiling, "file", "Message filed", nil))
	require.NoError(t, logs.LogError(1, models.LogModuleFiling, "file", "Filing failed", nil))
	require.NoError(t, logs.LogInfo(1, models.LogModuleAccount, "create", "Mail account created", nil))
	require.NoError(t, logs.LogInfo(2, models.LogModuleFiling, "file", "Message filed", nil))

	result, err := logs.QueryLogs(LogQuery{UserID: 1, Module: string(models.LogModuleFiling)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	for _, row := range result.Logs {
		assert.Equal(t, uint(1), row.UserID)
		assert.Equal(t, string(models.LogModuleFiling), row.Module)
	}

	result, err = logs.QueryLogs(LogQuery{UserID: 1, Level: string(models.LogLevelError)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "Filing failed", result.Logs[0].Message)
}

func TestQueryLogsPaginates(t *testing.T) {
	logs := NewLogService(newTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, logs.LogInfo(1, models.LogModuleAPI, "request", "handled", nil))
	}

	result, err := logs.QueryLogs(LogQuery{UserID: 1, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Len(t, result.Logs, 2)

	result, err = logs.QueryLogs(LogQuery{UserID: 1, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Logs, 1)
}

func TestQueryLogsSkipsEntriesBelowLevel(t *testing.T) {
	logs := NewLogServiceWithLevel(newTestDB(t), "WARN")

	require.NoError(t, logs.LogDebug(1, models.LogModuleFiling, "file", "debug detail", nil))
	require.NoError(t, logs.LogInfo(1, models.LogModuleFiling, "file", "info detail", nil))
	require.NoError(t, logs.LogWarn(1, models.LogModuleFiling, "file", "warn detail", nil))

	result, err := logs.QueryLogs(LogQuery{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "warn detail", result.Logs[0].Message)
}

func TestGetRecentLogsDefaultsLimit(t *testing.T) {
	logs := NewLogService(newTestDB(t))

	require.NoError(t, logs.LogInfo(1, models.LogModuleCLI, "user_create", "User created", nil))
	require.NoError(t, logs.LogInfo(2, models.LogModuleAuth, "login", "User logged in successfully", nil))

	rows, err := logs.GetRecentLogs(0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
