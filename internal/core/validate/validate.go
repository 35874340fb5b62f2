// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// RepositoryID validates a repository identifier: non-empty after trimming
// and free of whitespace and control characters.
func RepositoryID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("repository id is required")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("repository id %q must not contain whitespace or control characters", id)
		}
	}
	return nil
}

// RepositoryIDField returns a criterio validator for repository identifiers.
func RepositoryIDField(field, id string) error {
	return criterio.Run(field, id, RepositoryID)
}

// UpdateID validates an update identifier is non-empty after trimming.
func UpdateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("update id is required")
	}
	return nil
}
