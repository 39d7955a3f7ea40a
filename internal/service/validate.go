package service

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateURL checks that raw parses as scheme://host. field names the
// offending input in the error message.
func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperr.Newf(apperr.KindValidation, "%s must be a valid URL", field)
	}
	return nil
}

// validateLen checks that value fits within max characters. Empty values pass;
// required fields are checked separately.
func validateLen(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.Newf(apperr.KindValidation, "%s must be at most %d characters", field, max)
	}
	return nil
}

// normalizeTags trims, drops empties and deduplicates while preserving first
// occurrence order. A tag over 20 characters is a validation error.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > 20 {
			return nil, apperr.New(apperr.KindValidation, "tags must be at most 20 characters")
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

// normalizeEmail lower-cases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.New(apperr.KindValidation, "email must be a valid address")
	}
	return nil
}
