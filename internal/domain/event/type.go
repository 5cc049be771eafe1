package event

// Type identifies the type of domain event
type Type string

const (
	TypeClaimSubmitted     Type = "claim.submitted"
	TypeClaimStatusChanged Type = "claim.status_changed"
	TypeClaimArchived      Type = "claim.archived"
	TypeClaimAutoVerified  Type = "claim.auto_verified"
	TypeDocumentReviewed   Type = "document.reviewed"
	TypeDocumentUploaded   Type = "document.uploaded"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeClaimSubmitted,
		TypeClaimStatusChanged,
		TypeClaimArchived,
		TypeClaimAutoVerified,
		TypeDocumentReviewed,
		TypeDocumentUploaded:
		return true
	default:
		return false
	}
}

// AllTypes returns every defined event type
func AllTypes() []Type {
	return []Type{
		TypeClaimSubmitted,
		TypeClaimStatusChanged,
		TypeClaimArchived,
		TypeClaimAutoVerified,
		TypeDocumentReviewed,
		TypeDocumentUploaded,
	}
}
