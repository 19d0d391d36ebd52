package domain

// Principal is an authenticated identity as seen by the authorization layer:
// the stored username, the stored password digest (compared by the login flow,
// never in plaintext here), and the granted authorities.
type Principal struct {
	Username     string
	PasswordHash string
	Authorities  []string
}

// HasAuthority reports whether the principal was granted the given label.
func (p *Principal) HasAuthority(label string) bool {
	for _, a := range p.Authorities {
		if a == label {
			return true
		}
	}
	return false
}

// Authorities maps roles to granted-authority labels. The role name is reused
// verbatim as the label, with no prefixing or normalisation beyond what is
// already stored.
func Authorities(roles []Role) []string {
	labels := make([]string, 0, len(roles))
	for _, r := range roles {
		labels = append(labels, r.Name)
	}
	return labels
}
