// Package events carries campaign status transitions out to interested
// collaborators (UI push, reporting). Transport is pluggable; the
// pipeline only sees the Notifier interface.
package events

import "context"

const CampaignStatusChannel = "campaign.status"

// CampaignStatusEvent is published on every campaign status transition.
type CampaignStatusEvent struct {
	CampaignID int    `json:"campaign_id"`
	Status     string `json:"status"`
}

type Notifier interface {
	CampaignStatus(ctx context.Context, campaignID int, status string) error
}

// Noop discards events; used in tests and when redis is not configured.
type Noop struct{}

func (Noop) CampaignStatus(ctx context.Context, campaignID int, status string) error {
	return nil
}
