package services

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/database"
	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL"
	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// captureLogs redirects the global logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.Init(true, buf)
	t.Cleanup(func() { logger.Init(false, nil) })
	return buf
}

func createUser(t *testing.T, db *gorm.DB, email, roleName string) *models.User {
	t.Helper()
	var role models.UserRole
	require.NoError(t, db.Where(models.UserRole{Name: roleName}).FirstOrCreate(&role).Error)
	user := &models.User{Email: email, Name: email, RoleID: role.ID}
	require.NoError(t, db.Create(user).Error)
	return user
}

func insertLogs(t *testing.T, db *gorm.DB, userID string, at ...time.Time) {
	t.Helper()
	for _, ts := range at {
		require.NoError(t, db.Create(&models.OperationLog{
			UserID:     userID,
			Action:     models.ActionCreate,
			EntityType: "item",
			Details:    "{}",
			CreatedAt:  ts.UTC(),
		}).Error)
	}
}
