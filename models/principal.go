package models

// Principal is the identity a request is authenticated as.
//
// The auth layer loads it read-only from the user store for every request
// that carries a token. Role is never empty.
type Principal struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	IsActive     bool   `json:"isActive"`
}

// Authorities is the principal's granted authority list: its role, alone.
func (p *Principal) Authorities() []string {
	return []string{NormalizeRole(p.Role)}
}
