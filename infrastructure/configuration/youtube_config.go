package configuration

import "strings"

// Sample config files ship credentials like "YOUR_API_KEY_HERE"; such values
// must be treated the same as an absent credential.
const placeholderPrefix = "YOUR_"

func isPlaceholder(v string) bool {
	return v == "" || strings.HasPrefix(v, placeholderPrefix)
}

// CredentialPresent reports whether a usable upstream credential is
// configured: a real API key, or an OAuth access/refresh token pair.
func (y YouTube) CredentialPresent() bool {
	if !isPlaceholder(y.APIKey) {
		return true
	}
	return !isPlaceholder(y.AccessToken) && !isPlaceholder(y.RefreshToken)
}
