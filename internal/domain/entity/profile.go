package entity

import "time"

// InsuredProfile is an insured party saved by a client for reuse
type InsuredProfile struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PolicyNumber string    `json:"policy_number"`
	CheckDigit   string    `json:"check_digit"`
	Insurer      string    `json:"insurer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Party returns the profile as a claim's insured party
func (p *InsuredProfile) Party() InsuredParty {
	return InsuredParty{
		Name:         p.Name,
		Email:        p.Email,
		PolicyNumber: p.PolicyNumber,
		CheckDigit:   p.CheckDigit,
		Insurer:      p.Insurer,
	}
}
