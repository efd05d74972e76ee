package license

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultDuration applies to keys issued without a duration.
const DefaultDuration = 24 * time.Hour

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type License struct {
	ID          string                      `gorm:"column:id;primaryKey"`
	CreatedAt   time.Time                   `gorm:"column:created_at"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at"`
	UserKey     string                      `gorm:"column:user_key;uniqueIndex:idx_license_keys_lookup,priority:3"`
	Game        string                      `gorm:"column:game;uniqueIndex:idx_license_keys_lookup,priority:2"`
	Owner       string                      `gorm:"column:owner;uniqueIndex:idx_license_keys_lookup,priority:1"`
	Status      Status                      `gorm:"column:status"`
	Registrator string                      `gorm:"column:registrator"`
	MaxDevices  int                         `gorm:"column:max_devices"`
	Devices     datatypes.JSONSlice[string] `gorm:"column:devices"`
	ExpiresAt   *time.Time                  `gorm:"column:expires_at"`
	Duration    int                         `gorm:"column:duration"` // hours
	Version     int64                       `gorm:"column:version;not null;default:0"`
}

func (License) TableName() string {
	return "license_keys"
}

// Lifetime is how long the key stays valid after activation.
func (m *License) Lifetime() time.Duration {
	if m.Duration <= 0 {
		return DefaultDuration
	}
	return time.Duration(m.Duration) * time.Hour
}

func (m *License) Activated() bool {
	return m.ExpiresAt != nil
}
