package models

import (
	"errors"
	"strings"
	"time"

	"github.com/buildsite/backend/internal/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RiskTypeWeather is the one risk type with special reporting behavior:
// weather samples are displayed as their own category and are never folded
// into the four-factor composite score.
const RiskTypeWeather = "weather"

// RiskFactor is one structured finding inside a risk sample.
type RiskFactor struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// RiskSample is a point-in-time risk assessment for a project, usually
// produced by the external analysis service.
//
// Samples are immutable once created. The one exception is Active:
// alert-shaped samples are deactivated when a user dismisses them.
type RiskSample struct {
	DefaultModel
	ProjectID  uuid.UUID
	Project    Project `json:"-"`
	RiskType   string
	Score      int
	Severity   ledger.Severity
	Factors    []RiskFactor `gorm:"serializer:json"`
	ValidUntil *time.Time
	Active     bool
}

var ErrRiskTypeRequired = errors.New("a risk type must be set")

func (r *RiskSample) BeforeSave(_ *gorm.DB) error {
	r.RiskType = strings.TrimSpace(r.RiskType)

	if r.RiskType == "" {
		return ErrRiskTypeRequired
	}

	if r.Score < 0 || r.Score > 100 {
		return ErrScoreOutOfRange
	}

	if r.Severity == "" {
		r.Severity = ledger.SeverityFor(r.Score)
	}

	return nil
}

func (r *RiskSample) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	// The project has to exist
	return tx.First(&Project{}, r.ProjectID).Error
}

// LatestWeatherSample returns the most recent active, unexpired weather
// sample for the project. A missing sample is not an error: the report
// simply omits the weather category then.
func LatestWeatherSample(tx *gorm.DB, projectID uuid.UUID, now time.Time) (*RiskSample, error) {
	var samples []RiskSample
	err := tx.
		Where(&RiskSample{ProjectID: projectID, RiskType: RiskTypeWeather}).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}

	for i := range samples {
		if samples[i].ValidUntil == nil || samples[i].ValidUntil.After(now) {
			return &samples[i], nil
		}
	}

	return nil, nil
}
