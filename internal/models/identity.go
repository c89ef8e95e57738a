package models

import (
	"encoding/json"
	"slices"
)

// RoleUser is the role assigned to every self-registered account.
const RoleUser = "user"

// Identity is the user identity decoded from a session token.
// It is never persisted, it is always derived from the token.
type Identity struct {
	ID    string
	Email string
	Roles Roles
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// Roles is a role claim. The auth service has issued it both as a
// single string and as an array, so both decode.
type Roles []string

func (r *Roles) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*r = nil
			return nil
		}
		*r = Roles{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

// UserSummary is returned by the auth service after registration.
type UserSummary struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     []string `json:"role"`
}

// UserProfile is the profile held by the scooter service.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
