package entity

// Principal is the authenticated caller. Services receive it explicitly and
// derive capabilities from its role set.
type Principal struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal holds role
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the principal sees the global claim view
func (p Principal) IsStaff() bool {
	return p.HasRole(RoleOperator) || p.HasRole(RoleAdmin)
}

// CanAccessClaim reports whether the principal may read or edit the claim
func (p Principal) CanAccessClaim(c *Claim) bool {
	return p.IsStaff() || c.IsOwnedBy(p.Subject)
}

// CanReview reports whether the principal may change claim or document status
func (p Principal) CanReview() bool {
	return p.IsStaff()
}

// CanManageFiles reports whether the principal may delete stored files
func (p Principal) CanManageFiles() bool {
	return p.HasRole(RoleAdmin) || p.HasRole(RoleOperator)
}
