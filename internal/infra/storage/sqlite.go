package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"backtest_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists named engine configuration profiles in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the profile database at path.
// An empty path resolves to the per-user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "BacktestGo", "data", "backtest.db"), nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Profile Operations
// ======================================================================================

// SaveProfile validates and upserts a profile. CreatedAt of an existing row is kept.
func (s *Storage) SaveProfile(p *domain.Profile) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("profile name required: %w", domain.ErrInvalidArgument)
	}
	cfg := p.EngineConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	existing, err := s.GetProfile(p.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}
	return s.db.Save(p).Error
}

// GetProfile retrieves a profile by name
func (s *Storage) GetProfile(name string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.First(&p, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns all profiles ordered by name
func (s *Storage) ListProfiles() ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := s.db.Order("name").Find(&profiles).Error
	return profiles, err
}

// DeleteProfile removes a profile. Deleting a missing profile returns ErrNotFound.
func (s *Storage) DeleteProfile(name string) error {
	res := s.db.Where("name = ?", name).Delete(&domain.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile %q: %w", name, domain.ErrNotFound)
	}
	return nil
}
