package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipstore/backend/internal/models"
)

func TestMonitoringService_IsUserAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonitoringService(db, NewMonitoredUserRegistry(db))
	ctx := context.Background()

	admin := createUser(t, db, "admin@example.com", models.RoleAdmin)
	user := createUser(t, db, "user@example.com", models.RoleUser)

	ok, err := svc.IsUserAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsUserAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsUserAdmin(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsUserAdmin(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitoringService_GetMonitoredUsers(t *testing.T) {
	db := setupTestDB(t)
	reg := NewMonitoredUserRegistry(db)
	svc := NewMonitoringService(db, reg)
	ctx := context.Background()

	u := createUser(t, db, "flagged@example.com", models.RoleUser)
	_, err := reg.UpsertIfAbsent(ctx, u.ID, models.DefaultMonitoringReason)
	require.NoError(t, err)

	list, err := svc.GetMonitoredUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "flagged@example.com", list[0].Email)
	assert.Equal(t, models.DefaultMonitoringReason, list[0].Reason)

	monitored, err := svc.IsUserMonitored(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, monitored)
}

func TestMonitoringService_GetMonitoredUsersError(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonitoringService(db, NewMonitoredUserRegistry(db))
	require.NoError(t, db.Migrator().DropTable(&models.MonitoredUser{}))

	list, err := svc.GetMonitoredUsers(context.Background())
	assert.Error(t, err)
	assert.Nil(t, list)
}
