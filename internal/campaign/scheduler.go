// internal/campaign/scheduler.go
package campaign

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/queue"
	"github.com/unclebandit/bulksender/internal/repository"
)

// Scheduler is the periodic sweep that finds SCHEDULED campaigns whose
// start time falls within the lookahead window and submits a prepare job
// for each, delayed to its exact start. The sweep only reads; once the
// preparer flips a campaign to IN_PROGRESS it drops out of the query,
// so overlapping sweeps are harmless.
type Scheduler struct {
	Campaigns repository.CampaignRepositoryInterface
	Queue     queue.Queue
	Lookahead time.Duration
	Log       *zap.Logger
	Now       func() time.Time
}

func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.now()
	due, err := s.Campaigns.ListDue(now, s.Lookahead)
	if err != nil {
		s.Log.Error("campaign sweep failed", zap.Error(err))
		return
	}

	for _, c := range due {
		delay := time.Duration(0)
		if c.ScheduledAt != nil && c.ScheduledAt.After(now) {
			delay = c.ScheduledAt.Sub(now)
		}
		job := PrepareJob{CampaignID: c.ID}
		if err := s.Queue.PublishIn(ctx, TopicPrepare, job, delay); err != nil {
			s.Log.Error("failed to submit prepare job",
				zap.Int("campaign_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		s.Log.Info("campaign queued for preparation",
			zap.Int("campaign_id", c.ID),
			zap.Duration("delay", delay),
		)
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
