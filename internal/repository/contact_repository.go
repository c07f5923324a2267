package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/unclebandit/bulksender/internal/model"
)

// ContactDirectoryInterface is the contact-list collaborator boundary:
// the pipeline only ever reads channel-valid targets from it.
type ContactDirectoryInterface interface {
	ListTargets(contactListID int) ([]model.ContactListItem, error)
	GetByID(id int) (*model.ContactListItem, error)
}

type ContactRepository struct {
	DB *sql.DB
}

// ListTargets returns the valid items of a list in list order. Items
// marked invalid for the channel are filtered out here so the preparer
// never sees them.
func (r *ContactRepository) ListTargets(contactListID int) ([]model.ContactListItem, error) {
	query := `
        SELECT id, contact_list_id, name, identifier, COALESCE(email, ''), valid, attachments
        FROM contact_list_items
        WHERE contact_list_id=$1 AND valid
        ORDER BY id
    `
	rows, err := r.DB.Query(query, contactListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.ContactListItem{}
	for rows.Next() {
		var item model.ContactListItem
		if err := rows.Scan(&item.ID, &item.ContactListID, &item.Name, &item.Identifier,
			&item.Email, &item.Valid, pq.Array(&item.Attachments)); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ContactRepository) GetByID(id int) (*model.ContactListItem, error) {
	query := `
        SELECT id, contact_list_id, name, identifier, COALESCE(email, ''), valid, attachments
        FROM contact_list_items WHERE id=$1
    `
	var item model.ContactListItem
	err := r.DB.QueryRow(query, id).Scan(&item.ID, &item.ContactListID, &item.Name,
		&item.Identifier, &item.Email, &item.Valid, pq.Array(&item.Attachments))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

var _ ContactDirectoryInterface = (*ContactRepository)(nil)
