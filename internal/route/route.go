// Package route classifies a typed question so the text path can pick the
// right grounding tool before calling the model.
package route

import (
	"strings"
	"unicode"
)

// Route selects the grounding for one question.
type Route int

const (
	PlainChat Route = iota
	Search
	Maps
)

func (r Route) String() string {
	switch r {
	case Search:
		return "search"
	case Maps:
		return "maps"
	default:
		return "chat"
	}
}

var mapsPhrases = []string{
	"near me", "where is", "where are", "map of", "how far", "how do i get to",
}

var mapsWords = map[string]struct{}{
	// place lookup
	"nearby": {}, "directions": {}, "address": {}, "closest": {}, "nearest": {},
	// venue vocabulary
	"restaurant": {}, "restaurants": {}, "cafe": {}, "cafes": {}, "hotel": {}, "hotels": {},
}

var searchPhrases = []string{
	"who won", "look up", "search for",
}

var searchWords = map[string]struct{}{
	// recency
	"news": {}, "latest": {}, "today": {}, "current": {}, "recent": {}, "tonight": {},
	// lookup intents
	"search": {}, "weather": {}, "forecast": {}, "price": {}, "score": {}, "stock": {},
}

// Classify is deterministic and case-insensitive. Location intent wins over
// lookup intent when both appear; everything else is plain chat.
func Classify(text string) Route {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return PlainChat
	}
	for _, p := range mapsPhrases {
		if strings.Contains(q, p) {
			return Maps
		}
	}
	words := splitWords(q)
	for _, w := range words {
		if _, ok := mapsWords[w]; ok {
			return Maps
		}
	}
	for _, p := range searchPhrases {
		if strings.Contains(q, p) {
			return Search
		}
	}
	for _, w := range words {
		if _, ok := searchWords[w]; ok {
			return Search
		}
	}
	return PlainChat
}

func splitWords(q string) []string {
	return strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
