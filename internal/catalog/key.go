// file: internal/catalog/key.go
// version: 1.0.0
// guid: 5b3c4d6e-7f8a-4b9c-0d1e-2f3a4b5c6d7e

package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// keySeparator joins the normalized artist and title halves of a track
// key. It must never change once tracks have been persisted, since it
// participates in the stored uniqueness key.
const keySeparator = " — "

// TrackKey builds the canonical dedupe key for a track from its artist
// and title. Both parts are NFC-normalized, trimmed, lowercased, and have
// internal whitespace runs collapsed to single spaces. Pure and total:
// empty inputs are fine and produce a key of the form " — title".
func TrackKey(artist, title string) string {
	return normalizeKeyPart(artist) + keySeparator + normalizeKeyPart(title)
}

func normalizeKeyPart(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
