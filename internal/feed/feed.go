package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Headline is one feed entry, normalized. Immutable once created;
// the whole list is replaced on refresh.
type Headline struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
}

// FetchError is a per-feed (or per-entry) failure. It never aborts the
// batch; the remaining feeds still return headlines.
type FetchError struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Err    error  `json:"-"`
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// headlineID derives a stable address for a headline so the UI can
// refer back to it across requests within a session.
func headlineID(source, link string) string {
	sum := sha256.Sum256([]byte(source + "|" + link))
	return hex.EncodeToString(sum[:])[:16]
}

// FilterByKeywords keeps headlines whose title or description contains
// any of the keywords, case-insensitively. No keywords means no filter.
func FilterByKeywords(headlines []Headline, keywords []string) []Headline {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			lowered = append(lowered, strings.ToLower(k))
		}
	}
	if len(lowered) == 0 {
		return headlines
	}

	var filtered []Headline
	for _, h := range headlines {
		title := strings.ToLower(h.Title)
		desc := strings.ToLower(h.Description)
		for _, k := range lowered {
			if strings.Contains(title, k) || strings.Contains(desc, k) {
				filtered = append(filtered, h)
				break
			}
		}
	}
	return filtered
}

// LimitPerSource keeps at most n headlines from each source, in feed
// order. n <= 0 means no limit.
func LimitPerSource(headlines []Headline, n int) []Headline {
	if n <= 0 {
		return headlines
	}

	counts := make(map[string]int)
	var limited []Headline
	for _, h := range headlines {
		if counts[h.Source] >= n {
			continue
		}
		counts[h.Source]++
		limited = append(limited, h)
	}
	return limited
}

// SortByPublished orders headlines newest first. Entries without a
// parseable date sort last, keeping their relative feed order.
func SortByPublished(headlines []Headline) {
	sort.SliceStable(headlines, func(i, j int) bool {
		a, b := headlines[i].Published, headlines[j].Published
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
