// Package targeting holds campaign audience targeting parameters.
package targeting

import (
	"slices"
	"strings"
)

// MinMoods is the minimum number of distinct moods required before the
// targeting step is considered complete.
const MinMoods = 3

// Rules captures the audience parameters for one campaign.
// Moods keep insertion order; duplicates are never stored.
type Rules struct {
	Genre    string
	Language string
	Moods    []string
}

// SetGenre replaces the target genre.
func (r *Rules) SetGenre(genre string) {
	r.Genre = strings.TrimSpace(genre)
}

// SetLanguage replaces the target language.
func (r *Rules) SetLanguage(language string) {
	r.Language = strings.TrimSpace(language)
}

// AddMood appends a mood, preserving insertion order.
// Adding a mood that is already present is a no-op, not an error.
func (r *Rules) AddMood(mood string) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return
	}
	if slices.Contains(r.Moods, mood) {
		return
	}
	r.Moods = append(r.Moods, mood)
}

// RemoveMood removes a mood. Removing an absent mood is a no-op.
func (r *Rules) RemoveMood(mood string) {
	mood = strings.TrimSpace(mood)
	r.Moods = slices.DeleteFunc(r.Moods, func(existing string) bool {
		return existing == mood
	})
}

// Valid reports whether the targeting step is complete: genre and language
// set, and at least MinMoods distinct moods chosen.
func (r Rules) Valid() bool {
	return r.Genre != "" && r.Language != "" && len(r.Moods) >= MinMoods
}
