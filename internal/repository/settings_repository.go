package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/unclebandit/bulksender/internal/model"
)

// SettingsRepositoryInterface is the tenant settings collaborator.
type SettingsRepositoryInterface interface {
	Get(companyID int) (*model.PacingSettings, error)
}

type SettingsRepository struct {
	DB *sql.DB
}

// Tenants without a pacing row fall back to conservative defaults.
const (
	defaultBaseIntervalSeconds = 20
	defaultLongerIntervalAfter = 20
	defaultLongIntervalSeconds = 60
)

func (r *SettingsRepository) Get(companyID int) (*model.PacingSettings, error) {
	query := `
        SELECT company_id, base_interval_seconds, longer_interval_after, long_interval_seconds, variables
        FROM pacing_settings WHERE company_id=$1
    `
	var s model.PacingSettings
	var rawVars []byte
	err := r.DB.QueryRow(query, companyID).Scan(
		&s.CompanyID, &s.BaseIntervalSeconds, &s.LongerIntervalAfter, &s.LongIntervalSeconds, &rawVars,
	)
	if err == sql.ErrNoRows {
		return &model.PacingSettings{
			CompanyID:           companyID,
			BaseIntervalSeconds: defaultBaseIntervalSeconds,
			LongerIntervalAfter: defaultLongerIntervalAfter,
			LongIntervalSeconds: defaultLongIntervalSeconds,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rawVars) > 0 {
		if err := json.Unmarshal(rawVars, &s.Variables); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
