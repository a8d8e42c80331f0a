package search

import (
	"fmt"
	"strings"
)

// BuildQuery translates normalized search parameters into an FTS5 MATCH
// expression. A raw q wins over the per-field form; without q or a
// track name there is nothing to search and ok is false.
func BuildQuery(q, trackName, artistName, albumName string) (fts string, orderByRank bool, ok bool) {
	if q == "" && trackName == "" {
		return "", false, false
	}

	if q != "" {
		fts = q
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "(name_lower : %q)", trackName)
		if artistName != "" {
			fmt.Fprintf(&b, " AND (artist_name_lower : %s)", artistName)
		}
		if albumName != "" {
			fmt.Fprintf(&b, " AND (album_name_lower : %q)", albumName)
		}
		fts = b.String()
	}

	return fts, rankOrder(q, trackName, artistName, albumName), true
}

// rankOrder decides whether the FTS subquery orders by rank. The branch
// structure mirrors the historical short-query fast path; every branch
// currently ranks, but the structure is kept so the fast path can drop
// ranking again without reshaping callers.
func rankOrder(q, trackName, artistName, albumName string) bool {
	if q != "" && wordCount(q) > 3 {
		return true
	}
	if q == "" && artistName == "" && albumName == "" && wordCount(trackName) > 3 {
		return true
	}
	return true
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
