package campaign

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	appErrors "github.com/unclebandit/bulksender/internal/errors"
	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/model"
	"github.com/unclebandit/bulksender/internal/provider"
	"github.com/unclebandit/bulksender/internal/queue"
)

// In-memory fakes implementing the repository, queue, notifier and
// adapter boundaries, so the pipeline runs deterministically in tests.

type fakeCampaignRepo struct {
	mu        sync.Mutex
	nextID    int
	campaigns map[int]*model.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[int]*model.Campaign{}}
}

func (r *fakeCampaignRepo) add(c *model.Campaign) *model.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.campaigns[c.ID] = c
	return c
}

func (r *fakeCampaignRepo) Create(c *model.Campaign) error {
	r.add(c)
	return nil
}

func (r *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCampaignRepo) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	return nil, 0, nil
}

func (r *fakeCampaignRepo) ListDue(now time.Time, lookahead time.Duration) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.Status == model.CampaignStatusScheduled && c.ScheduledAt != nil && !c.ScheduledAt.After(now.Add(lookahead)) {
			cp := *c
			due = append(due, &cp)
		}
	}
	return due, nil
}

func (r *fakeCampaignRepo) transition(id int, to string, allowed func(*model.Campaign) bool, mutate func(*model.Campaign)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || !allowed(c) {
		return false, nil
	}
	c.Status = to
	if mutate != nil {
		mutate(c)
	}
	return true, nil
}

func (r *fakeCampaignRepo) Schedule(id int, at time.Time) (bool, error) {
	return r.transition(id, model.CampaignStatusScheduled,
		func(c *model.Campaign) bool { return c.Status == model.CampaignStatusInactive },
		func(c *model.Campaign) { c.ScheduledAt = &at })
}

func (r *fakeCampaignRepo) MarkInProgress(id int) (bool, error) {
	return r.transition(id, model.CampaignStatusInProgress,
		func(c *model.Campaign) bool { return c.Status == model.CampaignStatusScheduled }, nil)
}

func (r *fakeCampaignRepo) MarkFinished(id int, at time.Time) (bool, error) {
	return r.transition(id, model.CampaignStatusFinished,
		func(c *model.Campaign) bool { return c.Status == model.CampaignStatusInProgress },
		func(c *model.Campaign) { c.CompletedAt = &at })
}

func (r *fakeCampaignRepo) Cancel(id int) (bool, error) {
	return r.transition(id, model.CampaignStatusCancelled,
		func(c *model.Campaign) bool { return !c.Terminal() }, nil)
}

type fakeDeliveryRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*model.Delivery
	byPair map[[2]int]int
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{byID: map[int]*model.Delivery{}, byPair: map[[2]int]int{}}
}

func (r *fakeDeliveryRepo) Upsert(campaignID, contactID int, body string) (*model.Delivery, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byPair[[2]int{campaignID, contactID}]; ok {
		d := r.byID[id]
		if !d.Resolved() {
			d.Body = body
		}
		cp := *d
		return &cp, false, nil
	}
	r.nextID++
	d := &model.Delivery{
		ID:         r.nextID,
		CampaignID: campaignID,
		ContactID:  contactID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	r.byID[d.ID] = d
	r.byPair[[2]int{campaignID, contactID}] = d.ID
	cp := *d
	return &cp, true, nil
}

func (r *fakeDeliveryRepo) GetByID(id int) (*model.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, appErrors.NewDeliveryNotFound(id)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDeliveryRepo) SetJobHandle(id int, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok {
		d.JobHandle = handle
	}
	return nil
}

func (r *fakeDeliveryRepo) MarkDelivered(id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok && d.DeliveredAt == nil {
		d.DeliveredAt = &at
		d.LastError = ""
	}
	return nil
}

func (r *fakeDeliveryRepo) MarkFailed(id int, at time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok && !d.Resolved() {
		d.FailedAt = &at
		d.LastError = reason
	}
	return nil
}

func (r *fakeDeliveryRepo) RecordError(id int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok && d.DeliveredAt == nil {
		d.LastError = reason
	}
	return nil
}

func (r *fakeDeliveryRepo) CountResolved(campaignID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.byID {
		if d.CampaignID == campaignID && d.Resolved() {
			n++
		}
	}
	return n, nil
}

func (r *fakeDeliveryRepo) CountTotal(campaignID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.byID {
		if d.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

func (r *fakeDeliveryRepo) StatusCounts(campaignID int) (map[string]int, error) {
	return map[string]int{}, nil
}

func (r *fakeDeliveryRepo) all(campaignID int) []model.Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Delivery{}
	for _, d := range r.byID {
		if d.CampaignID == campaignID {
			out = append(out, *d)
		}
	}
	return out
}

type fakeContacts struct {
	lists map[int][]model.ContactListItem
}

func (f *fakeContacts) ListTargets(contactListID int) ([]model.ContactListItem, error) {
	valid := []model.ContactListItem{}
	for _, item := range f.lists[contactListID] {
		if item.Valid {
			valid = append(valid, item)
		}
	}
	return valid, nil
}

func (f *fakeContacts) GetByID(id int) (*model.ContactListItem, error) {
	for _, items := range f.lists {
		for _, item := range items {
			if item.ID == id {
				cp := item
				return &cp, nil
			}
		}
	}
	return nil, nil
}

type fakeSettings struct {
	settings *model.PacingSettings
}

func (f *fakeSettings) Get(companyID int) (*model.PacingSettings, error) {
	if f.settings != nil {
		return f.settings, nil
	}
	return &model.PacingSettings{
		CompanyID:           companyID,
		BaseIntervalSeconds: 20,
		LongerIntervalAfter: 20,
		LongIntervalSeconds: 60,
	}, nil
}

type publishedJob struct {
	topic string
	body  []byte
	delay time.Duration
}

type fakeQueue struct {
	mu        sync.Mutex
	published []publishedJob
}

func (q *fakeQueue) Publish(ctx context.Context, topic string, payload any) error {
	return q.PublishIn(ctx, topic, payload, 0)
}

func (q *fakeQueue) PublishIn(ctx context.Context, topic string, payload any, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, publishedJob{topic: topic, body: body, delay: delay})
	return nil
}

func (q *fakeQueue) Subscribe(topic string, h queue.Handler) error {
	return nil
}

func (q *fakeQueue) jobs(topic string) []publishedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := []publishedJob{}
	for _, j := range q.published {
		if j.topic == topic {
			out = append(out, j)
		}
	}
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.CampaignStatusEvent
}

func (n *fakeNotifier) CampaignStatus(ctx context.Context, campaignID int, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events.CampaignStatusEvent{CampaignID: campaignID, Status: status})
	return nil
}

func (n *fakeNotifier) byStatus(status string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Status == status {
			count++
		}
	}
	return count
}

type sendCall struct {
	to  string
	msg provider.Message
}

type fakeAdapter struct {
	mu     sync.Mutex
	family string
	calls  []sendCall
	err    error
}

func (a *fakeAdapter) Family() string {
	if a.family == "" {
		return model.ChannelSession
	}
	return a.family
}

func (a *fakeAdapter) Send(ctx context.Context, to string, msg provider.Message) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.calls = append(a.calls, sendCall{to: to, msg: msg})
	return "provider-msg-1", nil
}
