package security

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Role labels assigned by the credential store.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Claims identifies the principal an access token was issued for.
// Roles is kept sorted and free of duplicates.
type Claims struct {
	Subject string
	TokenID uuid.UUID
	Roles   []string
}

// NewClaims builds a claim set for subject with a fresh token id.
// Blank and duplicate roles are dropped.
func NewClaims(subject string, roles []string) Claims {
	return Claims{
		Subject: subject,
		TokenID: uuid.New(),
		Roles:   normalizeRoles(roles),
	}
}

// HasRole reports whether role is in the claim set. Comparison is exact.
func (c Claims) HasRole(role string) bool {
	_, found := slices.BinarySearch(c.Roles, role)
	return found
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
