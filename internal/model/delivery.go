package model

import "time"

// Delivery is the per-(campaign, contact) send record. At most one row
// exists per pair, enforced by a unique index and the idempotent upsert.
type Delivery struct {
	ID         int        `db:"id" json:"id"`
	CampaignID int        `db:"campaign_id" json:"campaign_id"`
	ContactID  int        `db:"contact_id" json:"contact_id"`
	Body       string     `db:"body" json:"body"`
	JobHandle  string     `db:"job_handle" json:"job_handle,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	FailedAt   *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	LastError  string     `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Resolved reports whether this delivery no longer needs dispatching:
// either confirmed sent or terminally failed.
func (d *Delivery) Resolved() bool {
	return d.DeliveredAt != nil || d.FailedAt != nil
}
