// Package scraper drives the repeating scrape cycle: fresh session,
// navigation, scroll-to-load, wait-for-content, extraction, persistence and
// notification, then sleep and repeat.
package scraper

import (
	"context"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/anton-sementsov/parser-upw/internal/browser"
	"github.com/anton-sementsov/parser-upw/internal/config"
	"github.com/anton-sementsov/parser-upw/internal/dom"
	"github.com/anton-sementsov/parser-upw/internal/extract"
	"github.com/anton-sementsov/parser-upw/internal/models"
	"github.com/anton-sementsov/parser-upw/utils"
)

const (
	bestMatchesURL  = "https://www.upwork.com/nx/find-work/best-matches"
	jobLinkSelector = "a[href*='/jobs/']"
	jobTileSelector = "section[data-test='JobsList'] article[data-test='JobTile']"
)

const (
	// Settle delays around navigation: the feed renders client-side after
	// the document loads and exposes no condition for "latest content".
	navigateSettle = 10 * time.Second
	reloadSettle   = 5 * time.Second

	feedPageDowns     = 12
	feedScrollDelay   = 2 * time.Second
	searchPageDowns   = 10
	searchScrollDelay = 1500 * time.Millisecond

	feedWaitMs   = 300000
	searchWaitMs = 120000

	acquireBackoff = 30 * time.Second
)

// Store is the persistence gateway consumed by the runner.
type Store interface {
	CountByID(ctx context.Context, jobID string) (int, error)
	Insert(ctx context.Context, record models.JobRecord) error
	UpdateProposals(ctx context.Context, jobID, proposals string, updatedAt time.Time) error
}

// Notifier delivers a notification for a newly inserted record.
type Notifier interface {
	NotifyNewJob(record models.JobRecord)
}

type Runner struct {
	cfg       *config.Config
	sessions  *browser.Manager
	extractor *extract.Extractor
	store     Store
	notifier  Notifier
	shots     *utils.ScreenShotDebugger
	now       func() time.Time
}

// NewRunner wires the scrape loop. notifier may be nil, which disables
// notifications.
func NewRunner(cfg *config.Config, store Store, notifier Notifier) *Runner {
	return &Runner{
		cfg:       cfg,
		sessions:  browser.NewManager(cfg),
		extractor: extract.New(cfg.BannedCountries),
		store:     store,
		notifier:  notifier,
		shots:     utils.NewScreenShotDebugger(),
		now:       time.Now,
	}
}

// Run loops scrape cycles until the context is cancelled. Each cycle gets a
// brand-new browser session; reusing one across cycles makes the session
// easier to fingerprint.
func (r *Runner) Run(ctx context.Context) {
	for ctx.Err() == nil {
		log.Println("--- Starting new scrape cycle (fresh session) ---")
		if !r.runCycle(ctx) {
			log.Printf("Unable to create browser session; sleeping %s and retrying", acquireBackoff)
			time.Sleep(acquireBackoff)
			continue
		}
		log.Printf("Sleeping %s before next cycle", r.cfg.ScrapeInterval())
		time.Sleep(r.cfg.ScrapeInterval())
	}
}

// runCycle executes one full pass. It returns false only when no session
// could be acquired; every other failure is absorbed inside the cycle.
func (r *Runner) runCycle(ctx context.Context) bool {
	session := r.sessions.Acquire()
	if session == nil {
		return false
	}
	defer func() {
		log.Println("Closing browser at end of cycle")
		session.Close()
	}()

	r.sessions.Login(session)

	if err := r.scrapeBestMatches(ctx, session); err != nil {
		log.Printf("⚠️ Best Matches pass failed: %v", err)
	}

	if len(r.cfg.SearchPages) == 0 {
		return true
	}

	// The feed pass may have killed the session; auxiliary pages get a
	// health check before navigating.
	session = r.sessions.RecreateIfNeeded(session)
	if session == nil {
		log.Println("⚠️ Could not recreate session for search pages; skipping them this cycle")
		return true
	}

	for _, pageURL := range r.cfg.SearchPages {
		if err := r.scrapeSearchPage(ctx, session, pageURL); err != nil {
			log.Printf("⚠️ Failed scraping search page %s: %v", pageURL, err)
		}
	}
	return true
}

func (r *Runner) scrapeBestMatches(ctx context.Context, session *browser.Session) error {
	page := session.Page()

	log.Println("Redirecting to Best Matches")
	if _, err := page.Goto(bestMatchesURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		return err
	}
	time.Sleep(navigateSettle)
	reloadForLatest(page)

	log.Println("Scrolling down page")
	browser.PageDownScroll(page, feedPageDowns, feedScrollDelay)

	log.Printf("Waiting for job links (timeout %ds)", feedWaitMs/1000)
	if _, err := page.WaitForSelector(jobLinkSelector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(feedWaitMs),
	}); err != nil {
		r.shots.CaptureAndLog(page, "best-matches-timeout", "🚨 No job links appeared before timeout")
		return err
	}

	records := r.extractor.BestMatches(dom.FromPage(page))
	log.Printf("Found %d job entries", len(records))
	r.persistAll(ctx, records)
	return nil
}

func (r *Runner) scrapeSearchPage(ctx context.Context, session *browser.Session, pageURL string) error {
	page := session.Page()

	browser.RandomDelay(1000, 2000)
	log.Printf("Scraping search page: %s", pageURL)
	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		return err
	}
	time.Sleep(navigateSettle)
	reloadForLatest(page)

	browser.PageDownScroll(page, searchPageDowns, searchScrollDelay)

	if _, err := page.WaitForSelector(jobTileSelector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(searchWaitMs),
	}); err != nil {
		r.shots.CaptureAndLog(page, "search-page-timeout", "🚨 No job tiles appeared before timeout")
		return err
	}

	records := r.extractor.SearchResults(dom.FromPage(page))
	log.Printf("Found %d entries on search page", len(records))
	r.persistAll(ctx, records)
	return nil
}

// reloadForLatest forces an explicit reload so the freshest postings render,
// with a hard-reload fallback. Best-effort.
func reloadForLatest(page playwright.Page) {
	log.Println("Refreshing page to load latest posts")
	if _, err := page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		log.Printf("⚠️ Standard refresh failed, attempting hard reload: %v", err)
		if _, err := page.Evaluate("location.reload(true)"); err != nil {
			log.Printf("⚠️ Hard reload failed, continuing without refresh: %v", err)
			return
		}
	}
	time.Sleep(reloadSettle)
}

// persistAll runs the insert-or-update flow for each record. A failure on one
// record is logged and skipped, never aborting the rest of the pass.
func (r *Runner) persistAll(ctx context.Context, records []models.JobRecord) {
	for _, record := range records {
		if err := r.persistOne(ctx, record); err != nil {
			log.Printf("⚠️ Skipping job %s: %v", record.ID, err)
		}
	}
}

// persistOne upserts a single record. Only a first insert triggers a
// notification; a re-sighting updates proposals and updated_at alone.
func (r *Runner) persistOne(ctx context.Context, record models.JobRecord) error {
	count, err := r.store.CountByID(ctx, record.ID)
	if err != nil {
		return err
	}

	if count > 0 {
		log.Printf("    Job ID #%s already exists. Updating job proposals...", record.ID)
		return r.store.UpdateProposals(ctx, record.ID, record.Proposals, r.now())
	}

	log.Printf("Storing `%s` in database", record.Title)
	if err := r.store.Insert(ctx, record); err != nil {
		return err
	}
	if r.notifier != nil {
		r.notifier.NotifyNewJob(record)
	}
	return nil
}
