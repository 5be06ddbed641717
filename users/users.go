package users

// User is the ledger user record as returned by the backend. It is
// cached in memory by the session facade and mirrored into the active
// storage lifetime as a serialized snapshot.
type User struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	OrganizationID *int64  `json:"organization_id,omitempty"`
	CreatedAt      *string `json:"created_at,omitempty"`
}

// HasOrganization reports whether the user belongs to an organization.
func (u *User) HasOrganization() bool {
	return u != nil && u.OrganizationID != nil
}
