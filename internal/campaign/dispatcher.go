// internal/campaign/dispatcher.go
package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/bulksender/internal/errors"
	"github.com/unclebandit/bulksender/internal/hours"
	"github.com/unclebandit/bulksender/internal/provider"
	"github.com/unclebandit/bulksender/internal/queue"
	"github.com/unclebandit/bulksender/internal/repository"
)

// Dispatcher executes one scheduled delivery at its computed time:
// business-hours gate, provider resolution, send, state update. Failures
// never escape the delivery they belong to.
type Dispatcher struct {
	Campaigns  repository.CampaignRepositoryInterface
	Deliveries repository.DeliveryRepositoryInterface
	Contacts   repository.ContactDirectoryInterface
	Providers  *provider.Registry
	Window     hours.Window
	Queue      queue.Queue
	Completion *Completion
	Log        *zap.Logger
	Now        func() time.Time
}

func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var job DispatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		d.Log.Error("invalid dispatch job payload", zap.Error(err))
		return nil
	}
	return d.Dispatch(ctx, job)
}

func (d *Dispatcher) Dispatch(ctx context.Context, job DispatchJob) error {
	log := d.Log.With(
		zap.Int("campaign_id", job.CampaignID),
		zap.Int("delivery_id", job.DeliveryID),
		zap.Int("contact_id", job.ContactID),
	)

	delivery, err := d.Deliveries.GetByID(job.DeliveryID)
	if err != nil {
		var notFound *appErrors.ErrDeliveryNotFound
		if errors.As(err, &notFound) {
			log.Warn("dispatch job references missing delivery")
			return nil
		}
		return err
	}
	if delivery.Resolved() {
		return nil
	}

	c, err := d.Campaigns.GetByID(job.CampaignID)
	if err != nil {
		return err
	}
	// Cancellation safety: pending jobs for a cancelled campaign no-op
	// on execution instead of being actively revoked.
	if c.Terminal() {
		log.Info("skipping dispatch, campaign is terminal", zap.String("status", c.Status))
		return nil
	}

	now := d.now()
	if c.BusinessHoursOnly && !d.Window.Open(now) {
		// Deliberate reschedule, not a failure; nothing is mutated.
		delay := d.Window.UntilOpen(now)
		log.Info("outside business hours, rescheduling", zap.Duration("delay", delay))
		return d.Queue.PublishIn(ctx, TopicDispatch, job, delay)
	}

	adapter := d.Providers.Resolve(c.CompanyID, c.Channel)
	if adapter == nil {
		// Configuration error: record and resolve the job so the queue
		// does not hammer a tenant with no connected provider.
		reason := fmt.Sprintf("no active %s provider for company %d", c.Channel, c.CompanyID)
		log.Error("dispatch failed", zap.String("reason", reason))
		if err := d.Deliveries.RecordError(delivery.ID, reason); err != nil {
			return err
		}
		return nil
	}

	contact, err := d.Contacts.GetByID(job.ContactID)
	if err != nil {
		return err
	}
	if contact == nil {
		return d.failPermanently(ctx, log, delivery.ID, c.ID, now, "contact no longer exists")
	}

	// Per-recipient attachments go out first, each as its own message.
	for _, att := range contact.Attachments {
		if _, err := adapter.Send(ctx, contact.Identifier, provider.Message{MediaURL: att}); err != nil {
			return d.handleSendError(ctx, log, delivery.ID, c.ID, now, err)
		}
	}

	msg := provider.Message{Body: delivery.Body}
	if c.MediaURL != "" {
		msg.MediaURL = c.MediaURL
	}
	providerID, err := adapter.Send(ctx, contact.Identifier, msg)
	if err != nil {
		return d.handleSendError(ctx, log, delivery.ID, c.ID, now, err)
	}

	if err := d.Deliveries.MarkDelivered(delivery.ID, now); err != nil {
		return err
	}
	log.Info("delivery sent", zap.String("provider_message_id", providerID))
	return d.Completion.Check(ctx, c.ID)
}

func (d *Dispatcher) handleSendError(ctx context.Context, log *zap.Logger, deliveryID, campaignID int, now time.Time, sendErr error) error {
	if provider.IsPermanent(sendErr) {
		return d.failPermanently(ctx, log, deliveryID, campaignID, now, sendErr.Error())
	}
	// Transient: record and surface the error so the queue retry policy
	// governs further attempts. The campaign stays IN_PROGRESS.
	log.Warn("transient send failure", zap.Error(sendErr))
	if err := d.Deliveries.RecordError(deliveryID, sendErr.Error()); err != nil {
		return err
	}
	return sendErr
}

// failPermanently resolves a delivery terminally and re-checks
// completion, since terminal failures count toward the denominator.
func (d *Dispatcher) failPermanently(ctx context.Context, log *zap.Logger, deliveryID, campaignID int, now time.Time, reason string) error {
	log.Error("permanent send failure", zap.String("reason", reason))
	if err := d.Deliveries.MarkFailed(deliveryID, now, reason); err != nil {
		return err
	}
	return d.Completion.Check(ctx, campaignID)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
