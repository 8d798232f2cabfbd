package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettingsSingletonKey is the only value the settings.singleton_key column
// ever holds; its unique index is what keeps the table to one row.
const SettingsSingletonKey = 1

// DefaultSettingsDescription is used when the singleton is created lazily.
const DefaultSettingsDescription = "system configuration"

// Settings is the process-wide configuration row holding the starting balance.
type Settings struct {
	Base
	SingletonKey    int             `gorm:"uniqueIndex;not null" json:"-"`
	StartingBalance decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"startingBalance"`
	EffectiveSince  time.Time       `gorm:"not null" json:"effectiveSince"`
	Description     string          `gorm:"not null" json:"description"`
}

// NewDefaultSettings returns the values used on first read.
func NewDefaultSettings(now time.Time) *Settings {
	return &Settings{
		SingletonKey:    SettingsSingletonKey,
		StartingBalance: decimal.Zero,
		EffectiveSince:  now.UTC(),
		Description:     DefaultSettingsDescription,
	}
}

// BeforeSave pins the singleton key and fills the defaults a partial value may lack.
func (s *Settings) BeforeSave(tx *gorm.DB) error {
	s.SingletonKey = SettingsSingletonKey
	if s.EffectiveSince.IsZero() {
		s.EffectiveSince = time.Now().UTC()
	}
	if s.Description == "" {
		s.Description = DefaultSettingsDescription
	}
	return nil
}
