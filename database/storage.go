package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catalyst-alerts/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WeekRange is a Monday-Friday span excluded from averaging.
type WeekRange struct {
	Start time.Time
	End   time.Time
}

// HistoryStorage persists option snapshots, precomputed averages and
// earnings weeks in SQLite. One instance is constructed at process start
// and shared by every component that needs the store.
type HistoryStorage struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// migration is one step of the ordered startup migration list. Every step
// must be idempotent: a no-op when no qualifying rows exist.
type migration struct {
	name string
	run  func(s *HistoryStorage) error
}

var migrations = []migration{
	{"schema", (*HistoryStorage).migrateSchema},
	{"backfill_bucket_fields", func(s *HistoryStorage) error {
		_, err := s.BackfillBucketFields()
		return err
	}},
	{"backfill_ordinals", func(s *HistoryStorage) error {
		_, err := s.BackfillOrdinals()
		return err
	}},
}

// NewHistoryStorage opens (or creates) the SQLite database at dbPath and
// applies the startup migration list.
func NewHistoryStorage(dbPath string) (*HistoryStorage, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	storage := &HistoryStorage{
		db:     db,
		logger: log,
	}

	for _, m := range migrations {
		if err := m.run(storage); err != nil {
			return nil, fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return storage, nil
}

func (s *HistoryStorage) migrateSchema() error {
	return s.db.AutoMigrate(
		&models.OptionSnapshot{},
		&models.WeeklyAverage{},
		&models.EarningsWeek{},
		&models.CollectionLog{},
		&models.AlertRecord{},
	)
}

// Close closes the database connection
func (s *HistoryStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
