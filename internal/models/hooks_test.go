package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&UserRole{}, &User{}, &Category{}, &Item{}, &MonitoredUser{}))
	return db
}

func TestBeforeCreate_AssignsIDs(t *testing.T) {
	db := setupTestDB(t)

	role := &UserRole{Name: RoleUser}
	require.NoError(t, db.Create(role).Error)
	assert.NotEmpty(t, role.ID)

	u := &User{Email: "hooks@example.com", RoleID: role.ID}
	require.NoError(t, db.Create(u).Error)
	assert.NotEmpty(t, u.ID)

	cat := &Category{Name: "Tennis"}
	require.NoError(t, db.Create(cat).Error)
	assert.NotEmpty(t, cat.ID)

	item := &Item{Name: "Racket", UserID: u.ID, CategoryID: &cat.ID}
	require.NoError(t, db.Create(item).Error)
	assert.NotEmpty(t, item.ID)

	mu := &MonitoredUser{UserID: u.ID, Reason: DefaultMonitoringReason}
	require.NoError(t, db.Create(mu).Error)
	assert.NotEmpty(t, mu.ID)
}

func TestBeforeCreate_KeepsExplicitID(t *testing.T) {
	db := setupTestDB(t)

	u := &User{ID: "fixed-id", Email: "fixed@example.com"}
	require.NoError(t, db.Create(u).Error)
	assert.Equal(t, "fixed-id", u.ID)
}

func TestCategory_TableName(t *testing.T) {
	assert.Equal(t, "item_categories", Category{}.TableName())
}

func TestOperationAction_Valid(t *testing.T) {
	for _, a := range []OperationAction{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		assert.True(t, a.Valid(), string(a))
	}
	assert.False(t, OperationAction("create").Valid())
	assert.False(t, OperationAction("").Valid())
}
