// Package campaign contains the dispatch pipeline: the periodic sweep
// that finds due campaigns, the preparer that fans a campaign out into
// per-contact deliveries, the dispatcher that executes one delivery, and
// the completion monitor that closes the loop.
//
// Stages share no in-process state; everything flows through the job
// queue and the delivery store, so any stage can run in any worker
// process and duplicate job execution is safe.
package campaign

// Queue topics consumed by the worker.
const (
	TopicPrepare  = "campaign_prepare"
	TopicDispatch = "campaign_dispatch"
)

// PrepareJob expands one campaign into deliveries.
type PrepareJob struct {
	CampaignID int `json:"campaign_id"`
}

// DispatchJob executes one scheduled delivery.
type DispatchJob struct {
	CampaignID int    `json:"campaign_id"`
	DeliveryID int    `json:"delivery_id"`
	ContactID  int    `json:"contact_id"`
	JobHandle  string `json:"job_handle,omitempty"`
}
