package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/bulksender/internal/errors"
	"github.com/unclebandit/bulksender/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error)

	// Pipeline transitions. The bool reports whether a row actually
	// changed, so redundant calls stay no-ops.
	ListDue(now time.Time, lookahead time.Duration) ([]*model.Campaign, error)
	Schedule(id int, at time.Time) (bool, error)
	MarkInProgress(id int) (bool, error)
	MarkFinished(id int, at time.Time) (bool, error)
	Cancel(id int) (bool, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, company_id, name, channel, status, contact_list_id, media_url,
	scheduled_at, completed_at,
	message1, message2, message3, message4, message5,
	pause_after_messages, pause_duration_seconds,
	business_hours_only, use_ai_variation, variation_profile_id,
	created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Channel, &c.Status, &c.ContactListID, &c.MediaURL,
		&c.ScheduledAt, &c.CompletedAt,
		&c.Message1, &c.Message2, &c.Message3, &c.Message4, &c.Message5,
		&c.PauseAfterMessages, &c.PauseDurationSeconds,
		&c.BusinessHoursOnly, &c.UseAIVariation, &c.VariationProfileID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusInactive
	}
	query := `
        INSERT INTO campaigns (company_id, name, channel, status, contact_list_id, media_url,
            scheduled_at, message1, message2, message3, message4, message5,
            pause_after_messages, pause_duration_seconds,
            business_hours_only, use_ai_variation, variation_profile_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.CompanyID, c.Name, c.Channel, c.Status, c.ContactListID, c.MediaURL,
		c.ScheduledAt, c.Message1, c.Message2, c.Message3, c.Message4, c.Message5,
		c.PauseAfterMessages, c.PauseDurationSeconds,
		c.BusinessHoursOnly, c.UseAIVariation, c.VariationProfileID, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if channel != "" {
		query += fmt.Sprintf(" AND channel=$%d", argPos)
		args = append(args, channel)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if channel != "" {
		countQuery += fmt.Sprintf(" AND channel=$%d", argPosCount)
		argsCount = append(argsCount, channel)
		argPosCount++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ====================== Pipeline transitions ======================

// ListDue returns SCHEDULED campaigns whose start time falls inside the
// sweep lookahead window. Campaigns that flipped to IN_PROGRESS drop out
// of this query, which is what makes the sweep idempotent.
func (r *CampaignRepository) ListDue(now time.Time, lookahead time.Duration) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
        ORDER BY scheduled_at`
	rows, err := r.DB.Query(query, model.CampaignStatusScheduled, now.Add(lookahead))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Schedule(id int, at time.Time) (bool, error) {
	return r.transition(`
        UPDATE campaigns SET status=$1, scheduled_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`,
		model.CampaignStatusScheduled, at, id, model.CampaignStatusInactive)
}

func (r *CampaignRepository) MarkInProgress(id int) (bool, error) {
	return r.transition(`
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`,
		model.CampaignStatusInProgress, id, model.CampaignStatusScheduled)
}

// MarkFinished is the sole writer of the terminal FINISHED transition.
// Guarding on IN_PROGRESS makes running it twice a no-op.
func (r *CampaignRepository) MarkFinished(id int, at time.Time) (bool, error) {
	return r.transition(`
        UPDATE campaigns SET status=$1, completed_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`,
		model.CampaignStatusFinished, at, id, model.CampaignStatusInProgress)
}

func (r *CampaignRepository) Cancel(id int) (bool, error) {
	return r.transition(`
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status NOT IN ($3, $4)`,
		model.CampaignStatusCancelled, id, model.CampaignStatusFinished, model.CampaignStatusCancelled)
}

func (r *CampaignRepository) transition(query string, args ...interface{}) (bool, error) {
	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
