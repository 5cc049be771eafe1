package port

import "context"

// ContactSync is sent to the CRM when a claim is submitted
type ContactSync struct {
	ClaimID      string `json:"claim_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PolicyNumber string `json:"policy_number"`
	Insurer      string `json:"insurer"`
	Category     string `json:"claim_category"`
}

// StatusUpdate is sent to the CRM when staff notify the insured party
type StatusUpdate struct {
	ClaimID            string `json:"claim_id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Status             string `json:"status"`
	StatusLabel        string `json:"status_label"`
	InsurerClaimNumber string `json:"insurer_claim_number,omitempty"`
	Message            string `json:"message,omitempty"`
}

// CRMNotifier triggers the external CRM automation
type CRMNotifier interface {
	SyncContact(ctx context.Context, c ContactSync) error
	SendStatusUpdate(ctx context.Context, u StatusUpdate) error
}
