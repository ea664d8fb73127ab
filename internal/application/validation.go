package application

import (
	"fmt"
	"strings"

	"clipkeep/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "itemID" -> "item ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"itemID":    "item ID",
		"pendingID": "pending ID",
		"query":     "query",
		"kind":      "kind",
		"limit":     "limit",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateItemID rejects empty IDs and IDs that could escape a file name
func ValidateItemID(fieldName, id string) error {
	if err := ValidateRequired(fieldName, id); err != nil {
		return err
	}
	if strings.ContainsAny(id, " \t\n/\\") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %q", formatFieldName(fieldName), id),
		}
	}
	return nil
}

// ValidateKind parses an optional kind filter. Empty means any kind.
func ValidateKind(fieldName, value string) (domain.Kind, error) {
	if value == "" {
		return "", nil
	}
	kind, ok := domain.ParseKind(value)
	if !ok {
		return "", &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("unknown kind %q (want file, url, image, richText or text)", value),
		}
	}
	return kind, nil
}

// ValidateLimit rejects negative limits. Zero means no limit.
func ValidateLimit(fieldName string, limit int) error {
	if limit < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must not be negative", formatFieldName(fieldName)),
		}
	}
	return nil
}
