package campaign

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/model"
)

func TestSweepSubmitsDueCampaigns(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	q := &fakeQueue{}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	soon := now.Add(3 * time.Minute)
	late := now.Add(2 * time.Hour)
	overdue := now.Add(-time.Minute)

	due := campaigns.add(&model.Campaign{Status: model.CampaignStatusScheduled, ScheduledAt: &soon})
	campaigns.add(&model.Campaign{Status: model.CampaignStatusScheduled, ScheduledAt: &late})
	past := campaigns.add(&model.Campaign{Status: model.CampaignStatusScheduled, ScheduledAt: &overdue})
	campaigns.add(&model.Campaign{Status: model.CampaignStatusInProgress, ScheduledAt: &soon})

	s := &Scheduler{
		Campaigns: campaigns,
		Queue:     q,
		Lookahead: 5 * time.Minute,
		Log:       zap.NewNop(),
		Now:       func() time.Time { return now },
	}
	s.Sweep(context.Background())

	jobs := q.jobs(TopicPrepare)
	require.Len(t, jobs, 2, "only SCHEDULED campaigns inside the window")

	delays := map[int]time.Duration{}
	for _, j := range jobs {
		var job PrepareJob
		require.NoError(t, json.Unmarshal(j.body, &job))
		delays[job.CampaignID] = j.delay
	}
	assert.Equal(t, 3*time.Minute, delays[due.ID])
	assert.Equal(t, time.Duration(0), delays[past.ID], "overdue campaigns prepare immediately")
}

func TestSweepWithNothingDue(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	q := &fakeQueue{}
	s := &Scheduler{
		Campaigns: campaigns,
		Queue:     q,
		Lookahead: 5 * time.Minute,
		Log:       zap.NewNop(),
	}
	s.Sweep(context.Background())
	assert.Empty(t, q.published)
}
