package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength   = 64
	MaxNameLength = 256
	MaxURLLength  = 2048
)

// Regular expressions for validation
var (
	// PrefixedIDPattern matches prefixed ULIDs such as "prj_01H..."
	PrefixedIDPattern = regexp.MustCompile(`^[a-z]{3}_[0-9A-HJKMNP-TV-Z]{26}$`)
)

// ValidateString validates string length and UTF-8 encoding
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must be at most %d characters", fieldName, maxLen)
	}
	return nil
}

// ValidateID checks that id is a prefixed ULID with the given prefix
func ValidateID(id, prefix, fieldName string) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, true); err != nil {
		return err
	}
	if !PrefixedIDPattern.MatchString(id) || !strings.HasPrefix(id, prefix+"_") {
		return fmt.Errorf("%s %q is not a valid %s identifier", fieldName, id, prefix)
	}
	return nil
}

// ValidateName validates an optional display name
func ValidateName(name, fieldName string) error {
	if err := ValidateString(name, fieldName, 0, MaxNameLength, false); err != nil {
		return err
	}
	if strings.ContainsAny(name, "\x00\r\n") {
		return fmt.Errorf("%s must be a single line", fieldName)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(raw, fieldName string) error {
	if err := ValidateString(raw, fieldName, 1, MaxURLLength, true); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", fieldName)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", fieldName)
	}
	return nil
}
