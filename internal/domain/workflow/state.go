package workflow

import "strings"

// State represents a claim or document status
type State string

const (
	StatePending       State = "pending"
	StateVerified      State = "verified"
	StateRejected      State = "rejected"
	StateUnderReview   State = "under-review"
	StateSentToInsurer State = "sent-to-insurer"
	StateArchived      State = "archived"
	StateApproved      State = "approved"
)

// Claim statuses
var claimStates = map[State]bool{
	StatePending:       true,
	StateVerified:      true,
	StateRejected:      true,
	StateUnderReview:   true,
	StateSentToInsurer: true,
	StateArchived:      true,
}

// Document statuses
var documentStates = map[State]bool{
	StatePending:     true,
	StateApproved:    true,
	StateRejected:    true,
	StateUnderReview: true,
}

var labels = map[State]string{
	StatePending:       "Pendiente",
	StateVerified:      "Verificado",
	StateRejected:      "Rechazado",
	StateUnderReview:   "En Revisión",
	StateSentToInsurer: "Enviado a la Aseguradora",
	StateArchived:      "Archivado",
	StateApproved:      "Aprobado",
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known claim or document status
func (s State) IsValid() bool {
	return claimStates[s] || documentStates[s]
}

// IsClaimState returns true if the state is a valid claim status
func (s State) IsClaimState() bool {
	return claimStates[s]
}

// IsDocumentState returns true if the state is a valid document status
func (s State) IsDocumentState() bool {
	return documentStates[s]
}

// IsActive reports whether a claim in this state shows up in active views
func (s State) IsActive() bool {
	return s != StateArchived
}

// Label returns the display label. Unknown values are passed through with
// the first letter capitalized so statuses added upstream still render.
func (s State) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return ""
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

// ClaimStates returns the claim statuses in board column order
func ClaimStates() []State {
	return []State{
		StatePending,
		StateUnderReview,
		StateVerified,
		StateSentToInsurer,
		StateRejected,
		StateArchived,
	}
}
