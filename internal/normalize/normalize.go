// Package normalize holds the pure text transforms the scraper pipeline is
// built on: job identity, URL canonicalization, proposals cleanup and
// relative-time parsing.
package normalize

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, title)
	result = strings.ToLower(strings.TrimSpace(result))
	return whitespaceRegex.ReplaceAllString(result, " ")
}

// JobID derives the stable identifier for a posting. Identity is the
// normalized title alone: two postings sharing a title collide into one row
// and later sightings only bump proposals/updated_at. Known tradeoff carried
// over from the original scraper; changing it to title+url would orphan every
// stored row, so it stays an operator decision.
func JobID(title string) string {
	sum := md5.Sum([]byte(normalizeTitle(title)))
	return hex.EncodeToString(sum[:])
}

// CanonicalURL strips everything from the first "/?" onward. Idempotent.
func CanonicalURL(rawURL string) string {
	if idx := strings.Index(rawURL, "/?"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}

// CleanProposals turns a scraped proposals indicator ("Proposals: Less than 5",
// "Proposals\n20 to 50") into the bare tier text.
func CleanProposals(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Proposals:")
	s = strings.TrimPrefix(s, "Proposals")
	s = strings.TrimLeft(s, ":\n\t ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

var relativeRegex = regexp.MustCompile(`(?i)(\d+)\s+(minute|hour|day|week|month)s?\s+ago`)

// PostedAt converts a relative time string as scraped ("2 days ago",
// "yesterday") into an absolute timestamp anchored at now. ok is false when
// the input is absent or unparseable.
func PostedAt(relative string, now time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(relative))
	if s == "" {
		return time.Time{}, false
	}

	switch {
	case strings.Contains(s, "just now"), strings.Contains(s, "moment ago"):
		return now, true
	case strings.Contains(s, "a minute ago"):
		return now.Add(-time.Minute), true
	case strings.Contains(s, "an hour ago"):
		return now.Add(-time.Hour), true
	case strings.Contains(s, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(s, "last week"):
		return now.AddDate(0, 0, -7), true
	case strings.Contains(s, "last month"):
		return now.AddDate(0, -1, 0), true
	}

	match := relativeRegex.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, false
	}

	n := 0
	for _, r := range match[1] {
		n = n*10 + int(r-'0')
	}

	switch strings.ToLower(match[2]) {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	case "month":
		return now.AddDate(0, -n, 0), true
	}
	return time.Time{}, false
}
