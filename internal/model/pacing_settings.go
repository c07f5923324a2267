// internal/model/pacing_settings.go
package model

// PacingSettings is the tenant-scoped send pacing configuration.
// Read-only to the pipeline.
type PacingSettings struct {
	CompanyID           int               `db:"company_id" json:"company_id"`
	BaseIntervalSeconds int               `db:"base_interval_seconds" json:"base_interval_seconds"`
	LongerIntervalAfter int               `db:"longer_interval_after" json:"longer_interval_after"`
	LongIntervalSeconds int               `db:"long_interval_seconds" json:"long_interval_seconds"`
	Variables           map[string]string `db:"variables" json:"variables,omitempty"`
}
