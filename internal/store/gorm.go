package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartstock/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// Entry is one key of the key-value table.
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// GormStore persists collections as rows of kv_entries.
type GormStore struct {
	DB *gorm.DB
}

func SQLite(path string) gorm.Dialector { return sqlite.Open(path) }
func MySQL(dsn string) gorm.Dialector { return mysql.Open(dsn) }

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// OpenGorm connects (retrying while the database comes up) and migrates the
// kv_entries table.
func OpenGorm(dialector gorm.Dialector, verbose bool, log *logger.Logger) (*GormStore, error) {
	level := gormLogger.Silent
	if verbose {
		level = gormLogger.Info
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: gormLogger.Default.LogMode(level),
		})
		if err == nil {
			break
		}
		log.Warn("failed to connect to database, retrying",
			"attempt", i+1, "max_attempts", connectAttempts, "error", err)
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", dialector.Name(), connectAttempts, err)
	}
	log.Info("connected to database", "driver", dialector.Name())

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Where("`key` = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

// Set overwrites the whole value in one upsert statement.
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("`key` = ?", key).Delete(&Entry{}).Error
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
