package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/unclebandit/bulksender/internal/errors"
	"github.com/unclebandit/bulksender/internal/model"
)

// DeliveryRepositoryInterface is the delivery store: the durable,
// idempotent record of "this campaign is sending to this contact".
type DeliveryRepositoryInterface interface {
	Upsert(campaignID, contactID int, body string) (*model.Delivery, bool, error)
	GetByID(id int) (*model.Delivery, error)
	SetJobHandle(id int, handle string) error
	MarkDelivered(id int, at time.Time) error
	MarkFailed(id int, at time.Time, reason string) error
	RecordError(id int, reason string) error
	CountResolved(campaignID int) (int, error)
	CountTotal(campaignID int) (int, error)
	StatusCounts(campaignID int) (map[string]int, error)
}

type DeliveryRepository struct {
	DB *sql.DB
}

const deliveryColumns = `id, campaign_id, contact_id, body, COALESCE(job_handle, ''),
	delivered_at, failed_at, COALESCE(last_error, ''), created_at, updated_at`

func scanDelivery(row interface{ Scan(...any) error }) (*model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(
		&d.ID, &d.CampaignID, &d.ContactID, &d.Body, &d.JobHandle,
		&d.DeliveredAt, &d.FailedAt, &d.LastError, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Upsert creates the (campaign, contact) row or refreshes it. An
// existing unresolved row gets its body updated in place, which handles
// re-submission after a crash; a delivered row is left untouched. The
// unique index plus ON CONFLICT DO NOTHING closes the insert race.
func (r *DeliveryRepository) Upsert(campaignID, contactID int, body string) (*model.Delivery, bool, error) {
	existing, err := r.getByPair(campaignID, contactID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.Resolved() {
			return existing, false, nil
		}
		query := `UPDATE deliveries SET body=$1, updated_at=NOW() WHERE id=$2`
		if _, err := r.DB.Exec(query, body, existing.ID); err != nil {
			return nil, false, err
		}
		existing.Body = body
		return existing, false, nil
	}

	query := `
        INSERT INTO deliveries (campaign_id, contact_id, body, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (campaign_id, contact_id) DO NOTHING
        RETURNING ` + deliveryColumns
	d, err := scanDelivery(r.DB.QueryRow(query, campaignID, contactID, body))
	if err == sql.ErrNoRows {
		// Lost the race to a concurrent preparer run; reuse its row.
		d, err := r.getByPair(campaignID, contactID)
		return d, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (r *DeliveryRepository) getByPair(campaignID, contactID int) (*model.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE campaign_id=$1 AND contact_id=$2`
	d, err := scanDelivery(r.DB.QueryRow(query, campaignID, contactID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *DeliveryRepository) GetByID(id int) (*model.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id=$1`
	d, err := scanDelivery(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewDeliveryNotFound(id)
	}
	return d, err
}

func (r *DeliveryRepository) SetJobHandle(id int, handle string) error {
	_, err := r.DB.Exec(`UPDATE deliveries SET job_handle=$1, updated_at=NOW() WHERE id=$2`, handle, id)
	return err
}

// MarkDelivered confirms the send. The delivered_at guard makes the call
// idempotent under duplicate job execution.
func (r *DeliveryRepository) MarkDelivered(id int, at time.Time) error {
	_, err := r.DB.Exec(`
        UPDATE deliveries SET delivered_at=$1, last_error='', updated_at=NOW()
        WHERE id=$2 AND delivered_at IS NULL`, at, id)
	return err
}

// MarkFailed resolves a delivery terminally (permanent recipient error).
func (r *DeliveryRepository) MarkFailed(id int, at time.Time, reason string) error {
	_, err := r.DB.Exec(`
        UPDATE deliveries SET failed_at=$1, last_error=$2, updated_at=NOW()
        WHERE id=$3 AND delivered_at IS NULL AND failed_at IS NULL`, at, reason, id)
	return err
}

// RecordError notes a transient failure; delivered_at stays NULL so the
// campaign is never falsely counted complete.
func (r *DeliveryRepository) RecordError(id int, reason string) error {
	_, err := r.DB.Exec(`
        UPDATE deliveries SET last_error=$1, updated_at=NOW()
        WHERE id=$2 AND delivered_at IS NULL`, reason, id)
	return err
}

// CountResolved counts deliveries that no longer need dispatching:
// delivered plus terminally failed. Terminal failures count toward
// completion so one permanently-unreachable contact cannot pin a
// campaign in IN_PROGRESS forever.
func (r *DeliveryRepository) CountResolved(campaignID int) (int, error) {
	var n int
	err := r.DB.QueryRow(`
        SELECT COUNT(*) FROM deliveries
        WHERE campaign_id=$1 AND (delivered_at IS NOT NULL OR failed_at IS NOT NULL)`, campaignID).Scan(&n)
	return n, err
}

func (r *DeliveryRepository) CountTotal(campaignID int) (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM deliveries WHERE campaign_id=$1`, campaignID).Scan(&n)
	return n, err
}

// StatusCounts feeds the campaign details endpoint.
func (r *DeliveryRepository) StatusCounts(campaignID int) (map[string]int, error) {
	query := `
        SELECT
            CASE
                WHEN delivered_at IS NOT NULL THEN 'delivered'
                WHEN failed_at IS NOT NULL THEN 'failed'
                ELSE 'pending'
            END AS state,
            COUNT(*)
        FROM deliveries WHERE campaign_id=$1 GROUP BY state`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "delivered": 0, "failed": 0, "total": 0}
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats[state] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
