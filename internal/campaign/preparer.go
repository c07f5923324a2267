// internal/campaign/preparer.go
package campaign

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/content"
	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/model"
	"github.com/unclebandit/bulksender/internal/pacing"
	"github.com/unclebandit/bulksender/internal/queue"
	"github.com/unclebandit/bulksender/internal/repository"
)

// Preparer expands one campaign into delivery rows and delayed dispatch
// jobs, one per valid contact, in a single pass. Running it twice is
// safe: the upsert reuses existing rows and resolved deliveries are
// never re-submitted.
type Preparer struct {
	Campaigns  repository.CampaignRepositoryInterface
	Deliveries repository.DeliveryRepositoryInterface
	Contacts   repository.ContactDirectoryInterface
	Settings   repository.SettingsRepositoryInterface
	Resolver   *content.Resolver
	Queue      queue.Queue
	Completion *Completion
	Notifier   events.Notifier
	Log        *zap.Logger
	Now        func() time.Time
	Rand       *rand.Rand
}

func (p *Preparer) Handle(ctx context.Context, body []byte) error {
	var job PrepareJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.Log.Error("invalid prepare job payload", zap.Error(err))
		return nil
	}
	return p.Prepare(ctx, job.CampaignID)
}

func (p *Preparer) Prepare(ctx context.Context, campaignID int) error {
	c, err := p.Campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}
	// A re-submitted job after a crash may find the campaign already
	// IN_PROGRESS; that run must still complete the fan-out.
	if c.Status != model.CampaignStatusScheduled && c.Status != model.CampaignStatusInProgress {
		p.Log.Info("skipping preparation, campaign not schedulable",
			zap.Int("campaign_id", c.ID),
			zap.String("status", c.Status),
		)
		return nil
	}

	bodies := c.Bodies()
	rnd := p.rand()
	if _, err := content.PickBody(bodies, rnd); err != nil {
		// Configuration error: surface to the operator, do not retry.
		p.Log.Error("campaign has no usable message body", zap.Int("campaign_id", c.ID))
		return nil
	}

	contacts, err := p.Contacts.ListTargets(c.ContactListID)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		p.Log.Warn("campaign has no valid contacts",
			zap.Int("campaign_id", c.ID),
			zap.Int("contact_list_id", c.ContactListID),
		)
	}

	settings, err := p.Settings.Get(c.CompanyID)
	if err != nil {
		return err
	}
	ps := pacing.Settings{
		BaseInterval:        time.Duration(settings.BaseIntervalSeconds) * time.Second,
		LongInterval:        time.Duration(settings.LongIntervalSeconds) * time.Second,
		LongerIntervalAfter: settings.LongerIntervalAfter,
		PauseEvery:          c.PauseAfterMessages,
		PauseFor:            time.Duration(c.PauseDurationSeconds) * time.Second,
	}

	now := p.now()
	cursor := now
	if c.ScheduledAt != nil && c.ScheduledAt.After(now) {
		cursor = *c.ScheduledAt
	}

	submitted := 0
	for i, contact := range contacts {
		contact := contact
		body, err := content.PickBody(bodies, rnd)
		if err != nil {
			break // unreachable after the check above; kept for safety
		}
		resolved := p.Resolver.Resolve(ctx, c, &contact, body, settings.Variables)

		d, _, err := p.Deliveries.Upsert(c.ID, contact.ID, resolved)
		if err != nil {
			p.Log.Error("failed to upsert delivery",
				zap.Int("campaign_id", c.ID),
				zap.Int("contact_id", contact.ID),
				zap.Error(err),
			)
			continue
		}

		// The cursor advances for every contact, delivered or not, so a
		// resumed run keeps the original spacing.
		cursor = pacing.Next(i, cursor, ps, rnd)

		if d.Resolved() {
			continue
		}

		handle := uuid.NewString()
		job := DispatchJob{
			CampaignID: c.ID,
			DeliveryID: d.ID,
			ContactID:  contact.ID,
			JobHandle:  handle,
		}
		if err := p.Queue.PublishIn(ctx, TopicDispatch, job, pacing.Delay(cursor, now)); err != nil {
			p.Log.Error("failed to submit dispatch job",
				zap.Int("campaign_id", c.ID),
				zap.Int("delivery_id", d.ID),
				zap.Error(err),
			)
			continue
		}
		if err := p.Deliveries.SetJobHandle(d.ID, handle); err != nil {
			p.Log.Warn("failed to persist job handle",
				zap.Int("delivery_id", d.ID),
				zap.Error(err),
			)
		}
		submitted++
	}

	changed, err := p.Campaigns.MarkInProgress(c.ID)
	if err != nil {
		return err
	}
	if changed {
		if err := p.Notifier.CampaignStatus(ctx, c.ID, model.CampaignStatusInProgress); err != nil {
			p.Log.Warn("failed to notify campaign start", zap.Int("campaign_id", c.ID), zap.Error(err))
		}
	}

	p.Log.Info("campaign prepared",
		zap.Int("campaign_id", c.ID),
		zap.Int("contacts", len(contacts)),
		zap.Int("dispatches_submitted", submitted),
	)

	// Covers the zero-contact edge case: with nothing to deliver the
	// campaign finishes immediately.
	return p.Completion.Check(ctx, c.ID)
}

func (p *Preparer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Preparer) rand() *rand.Rand {
	if p.Rand != nil {
		return p.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
