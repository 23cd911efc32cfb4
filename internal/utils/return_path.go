package utils

import (
	"net/url"
	"strings"
)

// SafeReturnPath reports whether raw is a same-origin path that a login
// redirect may land on. Absolute URLs and scheme-relative forms are refused.
func SafeReturnPath(raw string) (string, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "", false
	}
	if strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "", false
	}
	return u.RequestURI(), true
}
