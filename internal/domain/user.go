package domain

import "time"

// User role constants.
const (
	RoleBuyer    = "BUYER"
	RoleProducer = "PRODUCER"
)

// User is a marketplace participant. Certifications and Preferences are
// opaque JSON strings owned by the frontend.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Location       string    `json:"location"`
	FarmName       *string   `json:"farm_name,omitempty"`
	Certifications *string   `json:"certifications,omitempty"`
	Preferences    *string   `json:"preferences,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleBuyer, RoleProducer}
}

// IsValidRole checks whether the given role string is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
