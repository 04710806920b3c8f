package models

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	Subject  string   `json:"sub"`
	Username string   `json:"preferred_username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// HasRole reports whether the principal carries the given realm role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
