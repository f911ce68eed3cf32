package weblink

import (
	"net/url"
	"strings"
)

const VerifyEmailPath = "/verify-email"

// VerifyEmail builds the link a user follows to confirm their address.
func VerifyEmail(baseURL, token string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return baseURL + VerifyEmailPath + "?token=" + url.QueryEscape(token)
}

// ParseVerifyEmailToken extracts the token from a verification link or from
// a bare token string.
func ParseVerifyEmailToken(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "?") && !strings.Contains(raw, "/") {
		return raw, true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !strings.HasSuffix(u.Path, VerifyEmailPath) {
		return "", false
	}

	token := u.Query().Get("token")
	if token == "" {
		return "", false
	}
	return token, true
}
