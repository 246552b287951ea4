// Package profile persists enrolled voice profiles in sqlite. A user may
// accumulate profiles over time but at most one is active; old rows are
// kept deactivated for audit.
package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vector is a fixed-length embedding stored as a JSON array so the row
// stays readable regardless of storage engine.
type Vector []float32

// Value serializes the vector for storage.
func (v Vector) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("profile: marshaling embedding: %w", err)
	}
	return string(b), nil
}

// Scan deserializes a stored vector.
func (v *Vector) Scan(value any) error {
	var data []byte
	switch src := value.(type) {
	case []byte:
		data = src
	case string:
		data = []byte(src)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("profile: cannot scan %T into Vector", value)
	}
	return json.Unmarshal(data, v)
}

// VoiceProfile is one enrolled voice signature. Rows are immutable after
// creation except for deactivation when a newer profile replaces them.
type VoiceProfile struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"index;not null"`
	Embedding   Vector    `gorm:"type:text;not null"`
	SampleCount int       `gorm:"not null"`
	IsActive    bool      `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName sets the sqlite table name.
func (VoiceProfile) TableName() string {
	return "voice_profiles"
}

// BeforeCreate generates a profile ID if not already set.
func (p *VoiceProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
