package entity

import "time"

// ClaimHistory represents the audit trail of a claim
type ClaimHistory struct {
	ID             int64     `json:"id"`
	ClaimID        string    `json:"claim_id"`
	ActorID        string    `json:"actor_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Action         string    `json:"action"`
	Comments       string    `json:"comments,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
