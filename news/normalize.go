// Package news cleans and deduplicates raw headline records before they
// reach the sentiment scorer.
package news

import (
	"sort"
	"strings"

	"sentiment-edge/models"
)

// Normalize lowercases a title and collapses runs of whitespace into
// single spaces.
func Normalize(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

type dedupeKey struct {
	title string
	url   string
}

// Dedupe removes duplicate headlines keyed by (normalized title, URL).
// The earliest PublishedAt per key wins, so the result is the same for any
// input ordering. Output is sorted by PublishedAt ascending, with URL and
// title as tie-breaks to keep the ordering total.
func Dedupe(headlines []models.Headline) []models.Headline {
	best := make(map[dedupeKey]models.Headline, len(headlines))
	for _, h := range headlines {
		key := dedupeKey{title: Normalize(h.Title), url: h.URL}
		cur, seen := best[key]
		if !seen || h.PublishedAt.Before(cur.PublishedAt) ||
			(h.PublishedAt.Equal(cur.PublishedAt) && h.Title < cur.Title) {
			best[key] = h
		}
	}

	out := make([]models.Headline, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		if a.URL != b.URL {
			return a.URL < b.URL
		}
		return a.Title < b.Title
	})
	return out
}
