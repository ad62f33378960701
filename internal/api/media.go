package api

import "strings"

// DefaultPlaceholderImageURL is shown for courses without artwork.
const DefaultPlaceholderImageURL = "https://placehold.co/1200x400"

// NormalizeImageURL resolves a media URL from the platform into an
// absolute one. The platform serves uploaded media as origin-relative
// paths like /media/x.png; anything already absolute passes through, and
// an empty value falls back to the placeholder.
func NormalizeImageURL(origin, raw, placeholder string) string {
	if raw == "" {
		return placeholder
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	origin = strings.TrimRight(origin, "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return origin + raw
}
