package handlers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/database"
)

// OpenTestDB creates a migrated SQLite in-memory DB unique per test, with WAL
// and a busy timeout to reduce locking between parallel tests.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_journal_mode=WAL", dsnName)
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}
