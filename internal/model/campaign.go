// internal/model/campaign.go
package model

import "time"

// Campaign statuses. Terminal states (FINISHED, CANCELLED) have no exits.
const (
	CampaignStatusInactive   = "INACTIVE"
	CampaignStatusScheduled  = "SCHEDULED"
	CampaignStatusInProgress = "IN_PROGRESS"
	CampaignStatusCancelled  = "CANCELLED"
	CampaignStatusFinished   = "FINISHED"
)

// Provider families a campaign can target.
const (
	ChannelSession = "session"
	ChannelAPI     = "api"
)

type Campaign struct {
	ID            int        `db:"id" json:"id"`
	CompanyID     int        `db:"company_id" json:"company_id"`
	Name          string     `db:"name" json:"name"`
	Channel       string     `db:"channel" json:"channel"`
	Status        string     `db:"status" json:"status"`
	ContactListID int        `db:"contact_list_id" json:"contact_list_id"`
	MediaURL      string     `db:"media_url" json:"media_url,omitempty"`
	ScheduledAt   *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	// Up to five alternative bodies; the preparer picks one non-empty
	// body per recipient at random.
	Message1 string `db:"message1" json:"message1"`
	Message2 string `db:"message2" json:"message2,omitempty"`
	Message3 string `db:"message3" json:"message3,omitempty"`
	Message4 string `db:"message4" json:"message4,omitempty"`
	Message5 string `db:"message5" json:"message5,omitempty"`

	// Pacing overrides applied on top of the tenant PacingSettings.
	PauseAfterMessages   int `db:"pause_after_messages" json:"pause_after_messages"`
	PauseDurationSeconds int `db:"pause_duration_seconds" json:"pause_duration_seconds"`

	BusinessHoursOnly  bool `db:"business_hours_only" json:"business_hours_only"`
	UseAIVariation     bool `db:"use_ai_variation" json:"use_ai_variation"`
	VariationProfileID int  `db:"variation_profile_id" json:"variation_profile_id,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Bodies returns the candidate message bodies in declaration order,
// including empty slots.
func (c *Campaign) Bodies() []string {
	return []string{c.Message1, c.Message2, c.Message3, c.Message4, c.Message5}
}

// Terminal reports whether the campaign is in a state with no exits.
func (c *Campaign) Terminal() bool {
	return c.Status == CampaignStatusFinished || c.Status == CampaignStatusCancelled
}
