package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// settingsService owns the settings singleton. The unique singleton_key
// column makes concurrent first reads converge on one row.
type settingsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db, now: time.Now}
}

// GetOrCreate returns the singleton, inserting the defaults if it is missing.
func (s *settingsService) GetOrCreate(ctx context.Context) (*models.Settings, error) {
	settings, err := s.find(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// A concurrent creator may win the race; DO NOTHING lets us read its row.
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "singleton_key"}},
			DoNothing: true,
		}).
		Create(models.NewDefaultSettings(s.now())).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settings, err = s.find(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

func (s *settingsService) find(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).
		Where("singleton_key = ?", models.SettingsSingletonKey).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update applies the non-nil fields, creating the singleton first if needed.
// An empty description is ignored.
func (s *settingsService) Update(ctx context.Context, update SettingsUpdate) (*models.Settings, error) {
	if update.StartingBalance != nil && update.StartingBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "startingBalance must be greater than or equal to zero")
	}

	settings, err := s.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if update.StartingBalance != nil {
		settings.StartingBalance = *update.StartingBalance
	}
	if update.EffectiveSince != nil && !update.EffectiveSince.IsZero() {
		settings.EffectiveSince = update.EffectiveSince.UTC()
	}
	if update.Description != nil {
		if d := strings.TrimSpace(*update.Description); d != "" {
			settings.Description = d
		}
	}

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}
