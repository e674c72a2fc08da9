package models

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidUsername = errors.New("invalid username")

var (
	profileURLPattern = regexp.MustCompile(`instagram\.com/([^/?&#]+)`)
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
)

// NormalizeUsername accepts a bare handle, an @handle or a profile URL
// (query string and trailing slashes ignored) and returns the lower-cased handle.
func NormalizeUsername(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.Contains(s, "instagram.com") {
		if m := profileURLPattern.FindStringSubmatch(s); m != nil {
			s = m[1]
		}
	}
	s = strings.TrimPrefix(s, "@")
	s = strings.TrimSpace(strings.Trim(s, "/"))
	s = strings.ToLower(s)

	if !usernamePattern.MatchString(s) {
		return "", ErrInvalidUsername
	}
	return s, nil
}
