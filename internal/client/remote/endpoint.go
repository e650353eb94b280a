package remote

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateEndpoint checks that raw is a deployed spreadsheet web-app URL,
// i.e. http(s) with a path ending in /macros/s/<deployment>/exec (or /dev),
// optionally behind an /a/<domain> prefix. It returns the trimmed URL.
func ValidateEndpoint(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEndpoint)
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 6 && segs[0] == "a" && segs[1] != "" {
		segs = segs[2:]
	}
	if len(segs) != 4 || segs[0] != "macros" || segs[1] != "s" || segs[2] == "" ||
		(segs[3] != "exec" && segs[3] != "dev") {
		return "", fmt.Errorf("%w: %q is not a web app path", ErrInvalidEndpoint, u.Path)
	}
	return s, nil
}

// IsValidEndpoint is ValidateEndpoint reduced to a bool.
func IsValidEndpoint(raw string) bool {
	_, err := ValidateEndpoint(raw)
	return err == nil
}
