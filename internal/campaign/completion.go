// internal/campaign/completion.go
package campaign

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/model"
	"github.com/unclebandit/bulksender/internal/repository"
)

// Completion detects when every delivery of a campaign is resolved and
// performs the terminal FINISHED transition. It runs after every
// successful (or terminally failed) dispatch; the check is cheap and the
// transition is guarded in SQL, so redundant and racing invocations
// converge on FINISHED being set exactly once.
type Completion struct {
	Campaigns  repository.CampaignRepositoryInterface
	Deliveries repository.DeliveryRepositoryInterface
	Notifier   events.Notifier
	Log        *zap.Logger
	Now        func() time.Time
}

func (m *Completion) Check(ctx context.Context, campaignID int) error {
	resolved, err := m.Deliveries.CountResolved(campaignID)
	if err != nil {
		return err
	}
	total, err := m.Deliveries.CountTotal(campaignID)
	if err != nil {
		return err
	}
	if resolved != total {
		return nil
	}

	finished, err := m.Campaigns.MarkFinished(campaignID, m.now())
	if err != nil {
		return err
	}
	if !finished {
		// Already finished, cancelled, or not yet in progress.
		return nil
	}

	m.Log.Info("campaign finished",
		zap.Int("campaign_id", campaignID),
		zap.Int("deliveries", total),
	)
	if err := m.Notifier.CampaignStatus(ctx, campaignID, model.CampaignStatusFinished); err != nil {
		m.Log.Warn("failed to notify campaign finish", zap.Int("campaign_id", campaignID), zap.Error(err))
	}
	return nil
}

func (m *Completion) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
