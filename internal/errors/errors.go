// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrDeliveryNotFound is returned when a dispatch job references a
// delivery row that does not exist.
type ErrDeliveryNotFound struct {
	DeliveryID int
}

func (e *ErrDeliveryNotFound) Error() string {
	return fmt.Sprintf("delivery with ID %d not found", e.DeliveryID)
}

func NewDeliveryNotFound(id int) error {
	return &ErrDeliveryNotFound{DeliveryID: id}
}

// ErrInvalidTransition is returned when an API call asks for a campaign
// status change the state machine does not allow.
type ErrInvalidTransition struct {
	CampaignID int
	From, To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("campaign %d cannot transition from %s to %s", e.CampaignID, e.From, e.To)
}

func NewInvalidTransition(id int, from, to string) error {
	return &ErrInvalidTransition{CampaignID: id, From: from, To: to}
}
