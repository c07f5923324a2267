// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/content"
	appErrors "github.com/unclebandit/bulksender/internal/errors"
	"github.com/unclebandit/bulksender/internal/events"
	"github.com/unclebandit/bulksender/internal/model"
	"github.com/unclebandit/bulksender/internal/repository"
)

// CampaignService backs the HTTP API: campaign lifecycle operations and
// read models. The pipeline itself runs in the worker; the service only
// performs the user-driven transitions (schedule, cancel).
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	ContactRepo  repository.ContactDirectoryInterface
	SettingsRepo repository.SettingsRepositoryInterface
	Notifier     events.Notifier
	Log          *zap.Logger
}

type CreateCampaignInput struct {
	CompanyID            int      `json:"company_id"`
	Name                 string   `json:"name"`
	Channel              string   `json:"channel"`
	ContactListID        int      `json:"contact_list_id"`
	Messages             []string `json:"messages"`
	MediaURL             string   `json:"media_url"`
	ScheduledAt          *string  `json:"scheduled_at"`
	PauseAfterMessages   int      `json:"pause_after_messages"`
	PauseDurationSeconds int      `json:"pause_duration_seconds"`
	BusinessHoursOnly    bool     `json:"business_hours_only"`
	UseAIVariation       bool     `json:"use_ai_variation"`
	VariationProfileID   int      `json:"variation_profile_id"`
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

func (s *CampaignService) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
	if in.Channel != model.ChannelSession && in.Channel != model.ChannelAPI {
		return nil, fmt.Errorf("unknown channel %q", in.Channel)
	}
	if len(in.Messages) > 5 {
		return nil, fmt.Errorf("a campaign holds at most 5 message bodies, got %d", len(in.Messages))
	}
	nonEmpty := 0
	for _, m := range in.Messages {
		if strings.TrimSpace(m) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, fmt.Errorf("at least one non-empty message body is required")
	}

	c := &model.Campaign{
		CompanyID:            in.CompanyID,
		Name:                 in.Name,
		Channel:              in.Channel,
		ContactListID:        in.ContactListID,
		MediaURL:             in.MediaURL,
		Status:               model.CampaignStatusInactive,
		PauseAfterMessages:   in.PauseAfterMessages,
		PauseDurationSeconds: in.PauseDurationSeconds,
		BusinessHoursOnly:    in.BusinessHoursOnly,
		UseAIVariation:       in.UseAIVariation,
		VariationProfileID:   in.VariationProfileID,
	}
	msgs := []*string{&c.Message1, &c.Message2, &c.Message3, &c.Message4, &c.Message5}
	for i, m := range in.Messages {
		*msgs[i] = m
	}

	if in.ScheduledAt != nil {
		at, err := time.Parse(time.RFC3339, *in.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_at: %w", err)
		}
		c.ScheduledAt = &at
		c.Status = model.CampaignStatusScheduled
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Schedule flips an INACTIVE campaign to SCHEDULED; the sweep picks it
// up from there.
func (s *CampaignService) Schedule(ctx context.Context, id int, atStr string) (*model.Campaign, error) {
	at, err := time.Parse(time.RFC3339, atStr)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled_at: %w", err)
	}

	changed, err := s.CampaignRepo.Schedule(id, at)
	if err != nil {
		return nil, err
	}
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, appErrors.NewInvalidTransition(id, c.Status, model.CampaignStatusScheduled)
	}

	s.Log.Info("campaign scheduled", zap.Int("campaign_id", id), zap.Time("at", at))
	if err := s.Notifier.CampaignStatus(ctx, id, model.CampaignStatusScheduled); err != nil {
		s.Log.Warn("failed to notify schedule", zap.Int("campaign_id", id), zap.Error(err))
	}
	return c, nil
}

// Cancel is the external cancellation entry point. Safe at any pipeline
// stage: pending dispatch jobs check status before sending and no-op.
func (s *CampaignService) Cancel(ctx context.Context, id int) (*model.Campaign, error) {
	changed, err := s.CampaignRepo.Cancel(id)
	if err != nil {
		return nil, err
	}
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, appErrors.NewInvalidTransition(id, c.Status, model.CampaignStatusCancelled)
	}

	s.Log.Info("campaign cancelled", zap.Int("campaign_id", id))
	if err := s.Notifier.CampaignStatus(ctx, id, model.CampaignStatusCancelled); err != nil {
		s.Log.Warn("failed to notify cancellation", zap.Int("campaign_id", id), zap.Error(err))
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, channel, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, channel, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetails(id int) (*CampaignDetails, error) {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	stats, err := s.DeliveryRepo.StatusCounts(id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: c, Stats: stats}, nil
}

// RenderPreview resolves one campaign body for one contact, optionally
// with an override body, so operators can eyeball the substitution.
func (s *CampaignService) RenderPreview(id, contactID int, overrideBody *string) (string, error) {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	contact, err := s.ContactRepo.GetByID(contactID)
	if err != nil {
		return "", err
	}
	if contact == nil {
		return "", fmt.Errorf("contact not found")
	}
	settings, err := s.SettingsRepo.Get(c.CompanyID)
	if err != nil {
		return "", err
	}

	body := ""
	if overrideBody != nil && strings.TrimSpace(*overrideBody) != "" {
		body = *overrideBody
	} else {
		body, err = content.PickBody(c.Bodies(), rand.New(rand.NewSource(time.Now().UnixNano())))
		if err != nil {
			return "", err
		}
	}
	return content.Substitute(body, contact, settings.Variables), nil
}
