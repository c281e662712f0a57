// Package track holds the promotable track chosen for a campaign.
//
// Upstream search results arrive in several legacy field-name variants
// depending on the API version that produced them. Normalize is the single
// boundary that collapses them into one canonical Selection; nothing deeper
// in the campaign core branches on payload shape.
package track

import (
	"encoding/json"
	"strings"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
)

// ErrMissingID indicates a track payload without a stable identifier.
var ErrMissingID = apperrors.New(apperrors.CodeTrackMissingID, "track id is required")

// Selection is the canonical shape of a chosen track.
type Selection struct {
	ID         string
	Name       string
	ArtistName string
	ArtworkURL string
}

// Chosen reports whether a track has been selected.
func (s Selection) Chosen() bool {
	return s.ID != ""
}

// Payload captures every upstream shape a track result may arrive in.
type Payload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	ArtistName string          `json:"artist_name"`
	Artist     json.RawMessage `json:"artist"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Image   string `json:"image"`
	Artwork string `json:"artwork"`
	Cover   string `json:"cover"`
	Album   struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// Normalize collapses a raw track payload into a canonical Selection.
// A payload without an id is rejected; every other field falls back through
// the known legacy variants.
func Normalize(payload Payload) (Selection, error) {
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		return Selection{}, ErrMissingID
	}

	return Selection{
		ID:         id,
		Name:       normalizeName(payload),
		ArtistName: normalizeArtist(payload),
		ArtworkURL: normalizeArtwork(payload),
	}, nil
}

func normalizeName(payload Payload) string {
	if name := strings.TrimSpace(payload.Name); name != "" {
		return name
	}
	return strings.TrimSpace(payload.Title)
}

// normalizeArtist resolves the artist display name from the known variants:
// artist_name, artist (string or object with name), or artists[] joined.
func normalizeArtist(payload Payload) string {
	if name := strings.TrimSpace(payload.ArtistName); name != "" {
		return name
	}

	if len(payload.Artist) > 0 {
		var asString string
		if err := json.Unmarshal(payload.Artist, &asString); err == nil {
			if name := strings.TrimSpace(asString); name != "" {
				return name
			}
		}
		var asObject struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(payload.Artist, &asObject); err == nil {
			if name := strings.TrimSpace(asObject.Name); name != "" {
				return name
			}
		}
	}

	var names []string
	for _, artist := range payload.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func normalizeArtwork(payload Payload) string {
	if url := strings.TrimSpace(payload.Image); url != "" {
		return url
	}
	if len(payload.Album.Images) > 0 {
		if url := strings.TrimSpace(payload.Album.Images[0].URL); url != "" {
			return url
		}
	}
	if url := strings.TrimSpace(payload.Artwork); url != "" {
		return url
	}
	return strings.TrimSpace(payload.Cover)
}
