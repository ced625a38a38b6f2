package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anton-sementsov/parser-upw/internal/dom"
)

// fakeElement implements dom.Element over literal selector keys.
type fakeElement struct {
	text      string
	attrs     map[string]string
	children  map[string][]dom.Element
	ancestors map[string]dom.Element
}

func (f *fakeElement) Text() string            { return f.text }
func (f *fakeElement) Attr(name string) string { return f.attrs[name] }

func (f *fakeElement) Find(selector string) (dom.Element, bool) {
	els := f.children[selector]
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (f *fakeElement) FindAll(selector string) []dom.Element {
	return f.children[selector]
}

func (f *fakeElement) Ancestor(tag string) (dom.Element, bool) {
	el, ok := f.ancestors[tag]
	return el, ok
}

func anchor(title, href string, container *fakeElement) *fakeElement {
	a := &fakeElement{
		text:      title,
		attrs:     map[string]string{"href": href},
		ancestors: map[string]dom.Element{},
	}
	if container != nil {
		a.ancestors["section"] = container
	}
	return a
}

func textEl(text string) *fakeElement {
	return &fakeElement{text: text}
}

func feedPage(anchors ...dom.Element) *fakeElement {
	return &fakeElement{children: map[string][]dom.Element{
		"a[href*='/jobs/']": anchors,
	}}
}

func TestBestMatches_FieldExtraction(t *testing.T) {
	container := &fakeElement{children: map[string][]dom.Element{
		"p": {
			textEl("Build a Go scraper"),
			textEl("We need a resilient scraping loop with retries and persistence."),
		},
		"span": {
			textEl("Proposals: Less than 5"),
			textEl("Posted 2 days ago"),
		},
	}}
	root := feedPage(anchor("Build a Go scraper", "https://www.upwork.com/jobs/Go-scraper_~01/?ref=feed", container))

	records := New(nil).BestMatches(root)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Build a Go scraper", rec.Title)
	assert.Equal(t, "https://www.upwork.com/jobs/Go-scraper_~01", rec.URL)
	assert.Equal(t, "We need a resilient scraping loop with retries and persistence.", rec.Description)
	assert.Equal(t, "Less than 5", rec.Proposals)
	assert.Equal(t, "Posted 2 days ago", rec.PostedRelative)
	require.NotNil(t, rec.PostedAt)
	assert.NotEmpty(t, rec.ID)
}

func TestBestMatches_EmptyTitleSkipped(t *testing.T) {
	root := feedPage(anchor("", "https://www.upwork.com/jobs/hidden_~02", nil))
	assert.Empty(t, New(nil).BestMatches(root))
}

func TestBestMatches_DeniedURLsSkipped(t *testing.T) {
	root := feedPage(
		anchor("Saved search", "https://www.upwork.com/nx/search/saved/abc", nil),
		anchor("Skill filter", "https://www.upwork.com/jobs/?ontology_skill_uid=123", nil),
	)
	assert.Empty(t, New(nil).BestMatches(root))
}

func TestBestMatches_SameCanonicalURLCollapses(t *testing.T) {
	root := feedPage(
		anchor("Go scraper", "https://www.upwork.com/jobs/Go_~03/?ref=a", nil),
		anchor("Go scraper", "https://www.upwork.com/jobs/Go_~03/?ref=b", nil),
	)

	records := New(nil).BestMatches(root)
	assert.Len(t, records, 1)
}

func TestBestMatches_BannedTermDropsRecord(t *testing.T) {
	container := &fakeElement{children: map[string][]dom.Element{
		"p": {textEl("Remote work, India based team preferred for this role.")},
	}}
	root := feedPage(anchor("Data entry", "https://www.upwork.com/jobs/Data_~04", container))

	assert.Empty(t, New([]string{"India"}).BestMatches(root))
	assert.Len(t, New(nil).BestMatches(root), 1)
}

func tile(title, href string, extra map[string][]dom.Element) *fakeElement {
	children := map[string][]dom.Element{
		"h2.job-tile-title a": {&fakeElement{
			text:  title,
			attrs: map[string]string{"href": href},
		}},
	}
	for selector, els := range extra {
		children[selector] = els
	}
	return &fakeElement{children: children}
}

func searchPage(tiles ...dom.Element) *fakeElement {
	return &fakeElement{children: map[string][]dom.Element{
		"article[data-test='JobTile']": tiles,
	}}
}

func TestSearchResults_ComposedDescription(t *testing.T) {
	clientList := &fakeElement{children: map[string][]dom.Element{
		"li[data-test='payment-verified']": {textEl("")},
		"div.air3-rating-value-text":       {textEl("4.9")},
		"li[data-test='total-spent']": {&fakeElement{
			text:     "$10K+ spent",
			children: map[string][]dom.Element{"strong": {textEl("$10K+")}},
		}},
		"li[data-test='location']": {&fakeElement{
			text: "Location\nGermany",
		}},
	}}
	jobTile := tile("Go backend developer", "https://www.upwork.com/jobs/Go-backend_~05/?ref=search", map[string][]dom.Element{
		"small[data-test='job-pubilshed-date']":            {textEl("3 hours ago")},
		"div[data-test='UpCLineClamp JobDescription'] p":   {textEl("Build a REST API in Go.")},
		"li[data-test='proposals-tier']":                   {textEl("Proposals: 5 to 10")},
		"ul[data-test='JobInfoClient']":                    {clientList},
		"div[data-test='TokenClamp JobAttrs'] button[data-test='token'] span": {textEl("Golang"), textEl("PostgreSQL")},
	})

	records := New(nil).SearchResults(searchPage(jobTile))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Go backend developer", rec.Title)
	assert.Equal(t, "https://www.upwork.com/jobs/Go-backend_~05", rec.URL)
	assert.Equal(t, "5 to 10", rec.Proposals)
	assert.Equal(t, []string{"Golang", "PostgreSQL"}, rec.Tags)
	assert.Equal(t,
		"Client: Payment verified | rating 4.9 | $10K+ spent | Germany\n-\n"+
			"Proposals: 5 to 10\n-\n"+
			"Build a REST API in Go.",
		rec.Description)
	require.NotNil(t, rec.PostedAt)
}

func TestSearchResults_MissingProposalsYieldsEmptyField(t *testing.T) {
	jobTile := tile("Go worker", "https://www.upwork.com/jobs/Go-worker_~06", map[string][]dom.Element{
		"div[data-test='UpCLineClamp JobDescription'] p": {textEl("Short gig.")},
	})

	records := New(nil).SearchResults(searchPage(jobTile))
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Proposals)
}

func TestSearchResults_BannedClientLocationDropsRecord(t *testing.T) {
	clientList := &fakeElement{children: map[string][]dom.Element{
		"li[data-test='location']": {&fakeElement{text: "Location\nPakistan"}},
	}}
	jobTile := tile("Scraping gig", "https://www.upwork.com/jobs/Scrape_~07", map[string][]dom.Element{
		"ul[data-test='JobInfoClient']": {clientList},
	})

	assert.Empty(t, New([]string{"pakistan"}).SearchResults(searchPage(jobTile)))
}

func TestPickLongestDistinctText(t *testing.T) {
	candidates := []string{
		"short",
		"the title itself which is quite long indeed",
		"a medium length description text",
	}

	got := PickLongestDistinctText(candidates, "the title itself which is quite long indeed")
	assert.Equal(t, "a medium length description text", got)

	assert.Equal(t, "", PickLongestDistinctText(nil, "anything"))
}
