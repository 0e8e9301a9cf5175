package domain

import (
	"fmt"
	"strings"
)

// RetrievalText renders the employee as the canonical text used for
// embedding. Field order is fixed so the same record always produces the
// same text, which keeps indexing and any future re-embedding reproducible.
func (e Employee) RetrievalText() string {
	skills := "N/A"
	if len(e.Skills) > 0 {
		skills = strings.Join(e.Skills, ", ")
	}
	bio := e.Bio
	if bio == "" {
		bio = "N/A"
	}
	parts := []string{
		"Name: " + e.Name,
		"Position: " + e.Position,
		"Department: " + e.Department,
		"Skills: " + skills,
		"Bio: " + bio,
		fmt.Sprintf("Experience: %d years", e.Experience),
	}
	return strings.Join(parts, ". ")
}
