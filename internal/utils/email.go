package utils

import (
	"fmt"
	"net/url"
	"strings"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	localPart := parts[0]
	domain := parts[1]

	if len(localPart) <= 2 {
		return email
	}

	maskedLocal := string(localPart[0]) + strings.Repeat("*", len(localPart)-2) + string(localPart[len(localPart)-1])

	return maskedLocal + "@" + domain
}

func CreateEmailVerificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(token))
}

func CreatePasswordResetLink(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(token))
}
