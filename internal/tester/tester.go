package tester

import (
	"os"
	"path/filepath"

	"github.com/agridocs/cloudapi/internal/cache"
	"github.com/agridocs/cloudapi/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	db     *gorm.DB
	dbPath string
)

// Setup creates a fresh file-backed sqlite database and migrates the schema.
// Each call gets its own temp directory so test packages can run in parallel.
// TranslateError matches the production gorm config so unique-violation
// handling behaves the same under test.
func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	dir, err := os.MkdirTemp("", "agridocs-test-")
	if err != nil {
		panic(err)
	}
	dbPath = dir

	db, err = gorm.Open(sqlite.Open(filepath.Join(dir, "agridocs.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	if dbPath == "" {
		return
	}

	if err := os.RemoveAll(dbPath); err != nil {
		panic(err)
	}
	dbPath = ""
}

// Cache returns the no-op cache used in tests.
func Cache() cache.DocumentCache {
	return cache.NewNop()
}
