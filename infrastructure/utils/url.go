package utils

import (
	"net/url"
	"strings"
)

// HostMatchesDomain reports whether the URL's host is the given domain or a
// subdomain of it. A leading "www." on either side is irrelevant because the
// suffix rule covers it.
func HostMatchesDomain(rawURL, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	if domain == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// VideoIDFromURL extracts the YouTube video ID from the usual watch URL
// shapes: watch?v=, youtu.be/, /shorts/, /embed/ and /live/. Returns an
// empty string when the URL is not a recognizable video link.
func VideoIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	switch host {
	case "youtu.be":
		return firstPathSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
	default:
		return ""
	}

	if u.Path == "/watch" {
		return u.Query().Get("v")
	}
	for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			return firstPathSegment(strings.TrimPrefix(u.Path, prefix))
		}
	}
	return ""
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if idx := strings.IndexByte(p, '/'); idx != -1 {
		p = p[:idx]
	}
	return p
}
