// Package extract turns a rendered listing page into JobRecords. Two page
// layouts exist: the Best Matches feed has no stable per-job markup, so it is
// scanned loosely from job-detail anchors; search pages render structured job
// tiles with labeled sub-elements.
package extract

import (
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/anton-sementsov/parser-upw/internal/dom"
	"github.com/anton-sementsov/parser-upw/internal/models"
	"github.com/anton-sementsov/parser-upw/internal/normalize"
)

// Anchors whose target contains one of these fragments are navigation links
// (saved searches, skill filters), not postings.
var deniedURLFragments = []string{
	"ontology_skill_uid",
	"search/saved",
	"search/jobs/saved",
}

type Extractor struct {
	bannedTerms []string
	now         func() time.Time
}

// New builds an Extractor dropping any record whose composed description or
// client location matches one of the banned locale terms, case-insensitive.
func New(bannedTerms []string) *Extractor {
	lowered := make([]string, 0, len(bannedTerms))
	for _, term := range bannedTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			lowered = append(lowered, term)
		}
	}
	return &Extractor{bannedTerms: lowered, now: time.Now}
}

// BestMatches scans every job-detail anchor on the feed page. The feed markup
// carries no stable field markers, so each anchor's enclosing container is
// probed structurally and fields are picked by text-content heuristics.
func (e *Extractor) BestMatches(root dom.Element) []models.JobRecord {
	var records []models.JobRecord
	seen := mapset.NewSet[string]()

	for _, anchor := range root.FindAll("a[href*='/jobs/']") {
		title := anchor.Text()
		if title == "" {
			// Icon-only and wrapper anchors have no visible text.
			continue
		}

		href := anchor.Attr("href")
		if href == "" || deniedURL(href) {
			continue
		}
		url := normalize.CanonicalURL(href)
		if !seen.Add(url) {
			continue
		}

		var description, proposals, posted string
		if container, ok := ancestorContainer(anchor); ok {
			texts := innerTexts(container)
			description = PickLongestDistinctText(texts, title)
			proposals = firstContaining(texts, "Proposals")
			posted = firstContaining(texts, "ago", "yesterday", "week")
		}

		if e.matchesBannedTerm(description) {
			continue
		}

		records = append(records, e.buildRecord(title, url, description, proposals, posted, nil))
	}

	return records
}

// SearchResults reads the structured job tiles of a search page. Every
// sub-element lookup falls back to empty on its own, so a tile missing a
// field still yields a record.
func (e *Extractor) SearchResults(root dom.Element) []models.JobRecord {
	var records []models.JobRecord
	seen := mapset.NewSet[string]()

	for _, tile := range root.FindAll("article[data-test='JobTile']") {
		link, ok := tile.Find("h2.job-tile-title a")
		if !ok {
			continue
		}
		title := link.Text()
		href := link.Attr("href")
		if title == "" || href == "" || deniedURL(href) {
			continue
		}
		url := normalize.CanonicalURL(href)
		if !seen.Add(url) {
			continue
		}

		var posted string
		// The data-test value really is misspelled on the site.
		if el, ok := tile.Find("small[data-test='job-pubilshed-date']"); ok {
			posted = el.Text()
		}

		var description string
		if el, ok := tile.Find("div[data-test='UpCLineClamp JobDescription'] p"); ok {
			description = el.Text()
		}

		var proposals string
		if el, ok := tile.Find("li[data-test='proposals-tier']"); ok {
			proposals = el.Text()
		}

		var tags []string
		for _, el := range tile.FindAll("div[data-test='TokenClamp JobAttrs'] button[data-test='token'] span") {
			if tag := el.Text(); tag != "" {
				tags = append(tags, tag)
			}
		}

		clientParts := clientSummary(tile)

		if e.matchesAnyBannedTerm(clientParts) || e.matchesBannedTerm(description) {
			continue
		}

		composed := composeDescription(clientParts, normalize.CleanProposals(proposals), description)
		records = append(records, e.buildRecord(title, url, composed, proposals, posted, tags))
	}

	return records
}

func (e *Extractor) buildRecord(title, url, description, proposals, posted string, tags []string) models.JobRecord {
	record := models.JobRecord{
		ID:             normalize.JobID(title),
		URL:            url,
		Title:          title,
		Description:    description,
		PostedRelative: posted,
		Proposals:      normalize.CleanProposals(proposals),
		Tags:           tags,
	}
	if postedAt, ok := normalize.PostedAt(posted, e.now()); ok {
		record.PostedAt = &postedAt
	}
	return record
}

func (e *Extractor) matchesBannedTerm(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, term := range e.bannedTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func (e *Extractor) matchesAnyBannedTerm(parts []string) bool {
	for _, part := range parts {
		if e.matchesBannedTerm(part) {
			return true
		}
	}
	return false
}

func deniedURL(url string) bool {
	for _, fragment := range deniedURLFragments {
		if strings.Contains(url, fragment) {
			return true
		}
	}
	return false
}

// ancestorContainer probes for the closest enclosing section, then article,
// then div. Feed cards have changed tags more than once.
func ancestorContainer(anchor dom.Element) (dom.Element, bool) {
	for _, tag := range []string{"section", "article", "div"} {
		if container, ok := anchor.Ancestor(tag); ok {
			return container, true
		}
	}
	return nil, false
}

func innerTexts(container dom.Element) []string {
	var texts []string
	for _, selector := range []string{"p", "div", "span"} {
		for _, el := range container.FindAll(selector) {
			if text := el.Text(); text != "" {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

// PickLongestDistinctText returns the longest candidate that is not the
// excluded text. Deliberate fallback: the feed has no stable description
// marker, and the description is reliably the longest block in a card.
func PickLongestDistinctText(candidates []string, excluded string) string {
	longest := ""
	for _, candidate := range candidates {
		if candidate == excluded {
			continue
		}
		if len(candidate) > len(longest) {
			longest = candidate
		}
	}
	return longest
}

func firstContaining(texts []string, needles ...string) string {
	for _, text := range texts {
		for _, needle := range needles {
			if strings.Contains(text, needle) {
				return text
			}
		}
	}
	return ""
}

// clientSummary assembles the tile's client metadata into ordered parts:
// payment verification, rating, total spent, location.
func clientSummary(tile dom.Element) []string {
	clientList, ok := tile.Find("ul[data-test='JobInfoClient']")
	if !ok {
		return nil
	}

	var parts []string

	if _, ok := clientList.Find("li[data-test='payment-verified']"); ok {
		parts = append(parts, "Payment verified")
	} else if _, ok := clientList.Find("li[data-test='payment-unverified']"); ok {
		parts = append(parts, "Payment unverified")
	}

	if el, ok := clientList.Find("div.air3-rating-value-text"); ok {
		if rating := el.Text(); rating != "" {
			parts = append(parts, "rating "+rating)
		}
	}

	if spent, ok := clientList.Find("li[data-test='total-spent']"); ok {
		if amount, ok := spent.Find("strong"); ok && amount.Text() != "" {
			parts = append(parts, amount.Text()+" spent")
		} else if text := spent.Text(); text != "" {
			parts = append(parts, text)
		}
	}

	if location := clientLocation(clientList); location != "" {
		parts = append(parts, location)
	}

	return parts
}

func clientLocation(clientList dom.Element) string {
	locationItem, ok := clientList.Find("li[data-test='location']")
	if !ok {
		return ""
	}

	location := ""
	if span, ok := locationItem.Find("span[tabindex]"); ok {
		location = span.Text()
	}
	if location == "" {
		location = locationItem.Text()
	}
	if location == "" {
		return ""
	}

	// The visible text carries a screen-reader "Location" prefix.
	for _, prefix := range []string{"Location:", "Location"} {
		if strings.HasPrefix(location, prefix) {
			location = strings.TrimSpace(strings.TrimPrefix(location, prefix))
			break
		}
	}
	if strings.Contains(location, "\n") {
		lines := strings.Split(location, "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if line := strings.TrimSpace(lines[i]); line != "" {
				return line
			}
		}
	}
	return location
}

// composeDescription builds the record description in order: client summary,
// proposals line, raw description.
func composeDescription(clientParts []string, proposals, description string) string {
	var parts []string
	if len(clientParts) > 0 {
		parts = append(parts, "Client: "+strings.Join(clientParts, " | ")+"\n-")
	}
	if proposals != "" {
		parts = append(parts, "Proposals: "+proposals+"\n-")
	}
	if description != "" {
		parts = append(parts, description)
	}
	return strings.Join(parts, "\n")
}
