package models

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open opens (or creates) the catalog store at path and ensures the parts
// table exists.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Part{}); err != nil {
		return nil, fmt.Errorf("migrate store %s: %w", path, err)
	}
	return db, nil
}

// OpenExisting opens the store at path, failing up front when the file does
// not exist. A missing store is the one error this tool surfaces to the
// user before any query runs.
func OpenExisting(path string) (*gorm.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("can't find database file %s: %w", path, err)
	}
	return Open(path)
}
