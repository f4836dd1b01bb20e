// Package dbtest opens isolated in-memory sqlite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/db"
)

// Open returns a migrated in-memory database private to t and installs it as
// db.DB until the test finishes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	testDB, err := gorm.Open(sqlite.Open(dsn), db.Options())
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	originalDB := db.DB
	db.SetTestDB(testDB)

	t.Cleanup(func() {
		db.SetTestDB(originalDB)
		_ = sqlDB.Close()
	})

	return testDB
}
