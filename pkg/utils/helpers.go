package utils

import (
	"fmt"
	"strings"
)

// NormalizeEmail standardizes email format
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// WrapError provides consistent error wrapping
func WrapError(operation string, err error) error {
	return fmt.Errorf("failed to %s: %w", operation, err)
}
