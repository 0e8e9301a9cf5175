// Package domain defines the core record types, deterministic serialization,
// and validation for the StaffPilot retrieval pipeline. It acts as the
// validation gate at pipeline entry points.
package domain

// Employee is the retrieval unit: a single directory record that can be
// embedded, indexed, and returned as answer evidence.
type Employee struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Position   string   `json:"position"`
	Department string   `json:"department"`
	Skills     []string `json:"skills,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Experience int      `json:"experience,omitempty"`
}

// Payload returns the displayable attributes stored alongside the vector.
// Required fields are always present; optional fields are included only when
// populated so a missing value never round-trips as an empty sentinel.
func (e Employee) Payload() map[string]any {
	p := map[string]any{
		"name":       e.Name,
		"position":   e.Position,
		"department": e.Department,
	}
	if e.Email != "" {
		p["email"] = e.Email
	}
	if len(e.Skills) > 0 {
		p["skills"] = e.Skills
	}
	if e.Bio != "" {
		p["bio"] = e.Bio
	}
	if e.Experience > 0 {
		p["experience"] = e.Experience
	}
	return p
}
