package model

// ContactListItem is one addressable recipient inside a contact list.
// Items are immutable while a campaign against their list is running.
type ContactListItem struct {
	ID            int      `db:"id" json:"id"`
	ContactListID int      `db:"contact_list_id" json:"contact_list_id"`
	Name          string   `db:"name" json:"name"`
	Identifier    string   `db:"identifier" json:"identifier"`
	Email         string   `db:"email" json:"email,omitempty"`
	Valid         bool     `db:"valid" json:"valid"`
	Attachments   []string `db:"attachments" json:"attachments,omitempty"`
}
