package domain

import "strings"

// ValidateQuestion rejects empty or whitespace-only questions. Returns the
// trimmed question on success.
func ValidateQuestion(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", NewValidationError("question", text, ErrEmptyQuestion)
	}
	return trimmed, nil
}

// ValidateEmployee checks a record before indexing. A record missing any of
// its classification fields cannot produce useful retrieval text.
func ValidateEmployee(e Employee) error {
	if e.ID == "" {
		return NewValidationError("id", e.ID, ErrInvalidEmployee)
	}
	if e.Name == "" {
		return NewValidationError("name", e.Name, ErrInvalidEmployee)
	}
	if e.Position == "" {
		return NewValidationError("position", e.Position, ErrInvalidEmployee)
	}
	if e.Department == "" {
		return NewValidationError("department", e.Department, ErrInvalidEmployee)
	}
	return nil
}
