package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is a durable voice-profile store backed by sqlite via GORM.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema. Migration is idempotent, so Open is safe on every process start.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("profile: opening database %s: %w", path, err)
	}

	// sqlite supports a single writer; one pooled connection keeps
	// concurrent saves serialized instead of failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("profile: accessing sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&VoiceProfile{}); err != nil {
		return nil, fmt.Errorf("profile: migrating schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "profile_store").Logger(),
	}, nil
}

// Save commits a new active profile for userID. All previously active
// profiles for that user are deactivated in the same transaction, so a
// concurrent read never sees zero or two active rows. Returns the new
// profile's ID.
func (s *Store) Save(ctx context.Context, userID string, embedding []float32, sampleCount int) (string, error) {
	p := &VoiceProfile{
		UserID:      userID,
		Embedding:   Vector(embedding),
		SampleCount: sampleCount,
		IsActive:    true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&VoiceProfile{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivating old profiles: %w", err)
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("inserting profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("profile: saving profile for %s: %w", userID, err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("profile_id", p.ID).
		Int("sample_count", sampleCount).
		Msg("voice profile saved")

	return p.ID, nil
}

// LoadActive returns the embedding of the most recently created active
// profile for userID, or ok=false if the user has no active profile.
func (s *Store) LoadActive(ctx context.Context, userID string) ([]float32, bool, error) {
	var p VoiceProfile
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("profile: loading active profile for %s: %w", userID, err)
	}
	return []float32(p.Embedding), true, nil
}

// HasActive reports whether userID has an active profile.
func (s *Store) HasActive(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.LoadActive(ctx, userID)
	return ok, err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("profile: accessing sql.DB: %w", err)
	}
	return sqlDB.Close()
}
