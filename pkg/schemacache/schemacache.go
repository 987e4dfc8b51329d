package schemacache

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SchemaRecord is the persistence model for one cached chart schema.
// An empty Schema is cached too, so a chart that declares no schema is not
// re-downloaded on every edit session.
// Table name: chart_schemas
type SchemaRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ChartName    string    `gorm:"type:text;not null;uniqueIndex:idx_chart_schema"`
	ChartVersion string    `gorm:"type:text;not null;uniqueIndex:idx_chart_schema"`
	RepoName     string    `gorm:"type:text;not null;uniqueIndex:idx_chart_schema"`
	Namespace    string    `gorm:"type:text;not null;uniqueIndex:idx_chart_schema"`
	Schema       string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (SchemaRecord) TableName() string { return "chart_schemas" }

// Key identifies one cached schema.
type Key struct {
	ChartName    string
	ChartVersion string
	RepoName     string
	Namespace    string
}

type Cache struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite-backed schema cache at path.
// Use ":memory:" for an ephemeral cache.
func Open(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open schema cache")
	}

	if err := db.AutoMigrate(&SchemaRecord{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema cache")
	}

	return &Cache{db: db}, nil
}

// Get returns the cached schema bytes for key; found is false on a miss.
func (c *Cache) Get(key Key) ([]byte, bool, error) {
	var rec SchemaRecord
	err := c.db.First(&rec,
		"chart_name = ? AND chart_version = ? AND repo_name = ? AND namespace = ?",
		key.ChartName, key.ChartVersion, key.RepoName, key.Namespace,
	).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to query schema cache")
	}
	return []byte(rec.Schema), true, nil
}

// Set stores (or refreshes) the schema bytes for key.
func (c *Cache) Set(key Key, schema []byte) error {
	var rec SchemaRecord
	err := c.db.First(&rec,
		"chart_name = ? AND chart_version = ? AND repo_name = ? AND namespace = ?",
		key.ChartName, key.ChartVersion, key.RepoName, key.Namespace,
	).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = SchemaRecord{
			ChartName:    key.ChartName,
			ChartVersion: key.ChartVersion,
			RepoName:     key.RepoName,
			Namespace:    key.Namespace,
			Schema:       string(schema),
		}
		if err := c.db.Create(&rec).Error; err != nil {
			return errors.Wrap(err, "failed to insert schema cache record")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to query schema cache")
	}

	rec.Schema = string(schema)
	if err := c.db.Save(&rec).Error; err != nil {
		return errors.Wrap(err, "failed to update schema cache record")
	}
	return nil
}

// Prune deletes records that have not been refreshed within maxAge and
// returns how many were removed.
func (c *Cache) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := c.db.Where("updated_at < ?", cutoff).Delete(&SchemaRecord{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to prune schema cache")
	}
	return result.RowsAffected, nil
}
