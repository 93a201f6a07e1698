// Package sanitize normalizes untrusted customer input before it reaches
// the order pipeline. Every function is pure and idempotent; anything that
// cannot be made safe is rejected, never silently coerced.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidPhone      = errors.New("invalid phone format")
	ErrInvalidPostalCode = errors.New("invalid postal code format")
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`^[a-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{9,14}$`)
	caPostal     = regexp.MustCompile(`^[A-Z][0-9][A-Z] ?[0-9][A-Z][0-9]$`)
	usPostal     = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// queryOperatorPrefix marks reserved query-language operators in document
// store queries (e.g. $where). Keys carrying it never come from legitimate
// form input.
const queryOperatorPrefix = "$"

// Text strips markup tags and control characters (newline and tab survive),
// trims surrounding whitespace, and truncates to maxLen runes.
// Tag stripping loops until the text is stable, so nested fragments like
// "<<script>script>" cannot reassemble into a tag, and re-applying Text
// yields the same result.
func Text(s string, maxLen int) string {
	for {
		stripped := tagPattern.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)

	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxLen {
		s = strings.TrimSpace(string(runes[:maxLen]))
	}
	return s
}

// Email lowercases, sanitizes, and validates an address. The 254 ceiling is
// the RFC 5321 path limit.
func Email(s string) (string, error) {
	s = Text(strings.ToLower(s), 254)
	if !emailPattern.MatchString(s) {
		return "", ErrInvalidEmail
	}
	return s, nil
}

// Phone strips everything except digits and a single leading plus, then
// validates the remainder as an international number.
func Phone(s string) (string, error) {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if !phonePattern.MatchString(out) {
		return "", ErrInvalidPhone
	}
	return out, nil
}

// PostalCode uppercases, truncates to 10 chars, and validates against the
// country pattern. country is an ISO 3166-1 alpha-2 code; anything other
// than US is validated as Canadian.
func PostalCode(s, country string) (string, error) {
	s = Text(strings.ToUpper(s), 10)
	pattern := caPostal
	if strings.EqualFold(country, "US") {
		pattern = usPostal
	}
	if !pattern.MatchString(s) {
		return "", ErrInvalidPostalCode
	}
	return s, nil
}

// StripOperators removes any key beginning with a reserved query operator
// prefix, recursively through nested maps and slices. Non-container values
// pass through unchanged.
func StripOperators(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if strings.HasPrefix(k, queryOperatorPrefix) {
				continue
			}
			out[k] = StripOperators(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, val := range t {
			out = append(out, StripOperators(val))
		}
		return out
	default:
		return v
	}
}
