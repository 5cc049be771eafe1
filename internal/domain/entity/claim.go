package entity

import (
	"time"

	"github.com/garyjia/claims-portal/internal/domain/checklist"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// InsuredParty identifies the insured person a claim is filed for
type InsuredParty struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PolicyNumber string `json:"policy_number"`
	CheckDigit   string `json:"check_digit"`
	Insurer      string `json:"insurer"`
}

// Claim represents an insurance claim tracked from intake to the insurer
type Claim struct {
	ID                  string         `json:"id"`
	OwnerID             string         `json:"owner_id"`
	ContactEmail        string         `json:"contact_email"`
	ContactPhone        string         `json:"contact_phone"`
	Insured             InsuredParty   `json:"insured"`
	Category            string         `json:"tipo_reclamo"`
	IncidentCategory    string         `json:"tipo_siniestro,omitempty"`
	Services            []string       `json:"servicios"`
	SpecializedSurgery  bool           `json:"cirugia_especializada"`
	Description         string         `json:"descripcion"`
	IncidentDate        *time.Time     `json:"fecha_siniestro,omitempty"`
	ReportedClaimNumber string         `json:"numero_reclamo,omitempty"`
	InsurerClaimNumber  string         `json:"numero_reclamo_aseguradora,omitempty"`
	Status              workflow.State `json:"status"`
	StatusComments      string         `json:"status_comments,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	UpdatedBy           string         `json:"updated_by,omitempty"`
}

// IsArchived reports whether the claim has been removed from active views
func (c *Claim) IsArchived() bool {
	return c.Status == workflow.StateArchived
}

// IsOwnedBy reports whether ownerID filed the claim
func (c *Claim) IsOwnedBy(ownerID string) bool {
	return ownerID != "" && c.OwnerID == ownerID
}

// HasService reports whether tag is among the selected services
func (c *Claim) HasService(tag string) bool {
	for _, s := range c.Services {
		if s == tag {
			return true
		}
	}
	return false
}

// Normalize clears fields that only apply to other categories
func (c *Claim) Normalize() {
	if c.Category != checklist.CategoryReembolso {
		c.IncidentCategory = ""
	}
	if c.IncidentCategory != checklist.IncidentComplemento {
		c.ReportedClaimNumber = ""
	}
	if c.Category != checklist.CategoryProgramacion || !c.HasService(checklist.ServiceCirugia) {
		c.SpecializedSurgery = false
	}
}

// ChecklistInput returns the resolver input for this claim
func (c *Claim) ChecklistInput() checklist.Input {
	return checklist.Input{
		ClaimCategory:        c.Category,
		IncidentCategory:     c.IncidentCategory,
		SelectedServices:     c.Services,
		IsSpecializedSurgery: c.SpecializedSurgery,
	}
}

// Checklist resolves the required documents of the claim
func (c *Claim) Checklist() checklist.Checklist {
	return checklist.Resolve(c.ChecklistInput())
}
