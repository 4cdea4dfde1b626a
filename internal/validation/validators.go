// Package validation holds input checks applied to values that end up in
// file paths or collaborator command lines.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Site ids are hostnames or slugs: alphanumeric, dot, dash, underscore.
	targetIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,252}$`)

	// Collaborator option names.
	optionNameRegex = regexp.MustCompile(`^[a-z0-9_]{1,191}$`)

	// Characters never allowed in a target id, even if the regex changes.
	dangerousChars = []string{"/", "\\", ";", "|", "&", "$", "`", "\n", "\r", "\x00"}
)

// ValidateTargetID validates a site identifier before it is joined into a path.
func ValidateTargetID(id string) error {
	if id == "" {
		return fmt.Errorf("target id cannot be empty")
	}

	for _, char := range dangerousChars {
		if strings.Contains(id, char) {
			return fmt.Errorf("target id contains dangerous character: %q", char)
		}
	}

	if strings.Contains(id, "..") {
		return fmt.Errorf("target id must not contain '..': %s", id)
	}

	if !targetIDRegex.MatchString(id) {
		return fmt.Errorf("invalid target id: %s (must be alphanumeric with ._-)", id)
	}

	return nil
}

// ValidateOptionName validates a collaborator option name.
func ValidateOptionName(name string) error {
	if !optionNameRegex.MatchString(name) {
		return fmt.Errorf("invalid option name: %q", name)
	}
	return nil
}

// ValidateArgValue validates a value passed as a single collaborator argument.
// Values are never shell-interpreted, but a leading "--" would be read as a flag.
func ValidateArgValue(value string) error {
	if strings.HasPrefix(value, "--") {
		return fmt.Errorf("value must not start with '--': %q", value)
	}
	if strings.ContainsAny(value, "\x00\n\r") {
		return fmt.Errorf("value contains control characters: %q", value)
	}
	return nil
}

// ValidateAllowlist validates that a value is in an allowlist
func ValidateAllowlist(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("value %q not in allowed list: %v", value, allowed)
}
