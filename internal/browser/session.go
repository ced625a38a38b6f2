// Package browser owns the browser process lifecycle: hardened launch with
// retry over channel candidates, liveness probing, the authenticated login
// sequence, and session recreation.
package browser

import (
	"log"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/anton-sementsov/parser-upw/internal/config"
)

const loginURL = "https://www.upwork.com/ab/account-security/login"

// loginSettle is a blind delay: the login page renders client-side and may
// open a popup window, with no stable condition to wait on.
const loginSettle = 25 * time.Second

const credentialFieldTimeoutMs = 30000

// Well-known install locations probed by the fallback launch when no channel
// candidate works.
var executableCandidates = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome-beta",
	"/opt/google/chrome/chrome",
	"/usr/bin/chromium-browser",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Google Chrome Beta.app/Contents/MacOS/Google Chrome Beta",
	"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
}

// Session is one live browser automation handle. It is owned by exactly one
// scrape cycle and never shared.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	page    playwright.Page
}

// Page returns the session's active page.
func (s *Session) Page() playwright.Page {
	return s.page
}

// IsAlive reports whether the session still answers a trivial command.
// Never panics or returns an error: any failure means not alive.
func (s *Session) IsAlive() bool {
	if s == nil || s.page == nil {
		return false
	}
	_, err := s.page.Evaluate("1")
	return err == nil
}

// Close tears the session down best-effort; close errors are swallowed
// because a stale session often cannot be closed cleanly.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.ctx != nil {
		_ = s.ctx.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
}

// Manager launches and logs in browser sessions.
type Manager struct {
	cfg *config.Config
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Acquire tries every channel candidate, up to MaxLaunchAttempts full passes,
// launching a hardened session for each; the first success wins. When all
// candidates fail it falls back to a standard launch probing well-known
// browser install locations. Returns nil only when every strategy fails —
// the caller must treat that as transient, not fatal.
func (m *Manager) Acquire() *Session {
	for attempt := 1; attempt <= m.cfg.MaxLaunchAttempts; attempt++ {
		for _, channel := range m.cfg.BrowserChannels {
			log.Printf("Trying browser channel %q (attempt %d/%d)", channel, attempt, m.cfg.MaxLaunchAttempts)
			session, err := m.launch(hardenedOptions(channel))
			if err != nil {
				log.Printf("⚠️ Failed to launch %q: %v", channel, err)
				continue
			}
			log.Printf("✅ Launched hardened session on channel %q", channel)
			return session
		}
	}

	log.Printf("All channel candidates failed within %d attempts, trying standard launch", m.cfg.MaxLaunchAttempts)
	session, err := m.launchFallback()
	if err != nil {
		log.Printf("❌ Standard launch fallback failed: %v", err)
		return nil
	}
	log.Println("✅ Launched standard session via fallback")
	return session
}

func (m *Manager) launchFallback() (*Session, error) {
	options := hardenedOptions("")
	for _, candidate := range executableCandidates {
		if _, err := os.Stat(candidate); err == nil {
			log.Printf("Using browser binary at %s", candidate)
			options.ExecutablePath = playwright.String(candidate)
			break
		}
	}
	return m.launch(options)
}

func (m *Manager) launch(options playwright.BrowserTypeLaunchOptions) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(options)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	ctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, err
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		log.Printf("⚠️ Failed to install stealth script: %v", err)
	}

	if m.cfg.CookiesPath != "" {
		if cookies, err := LoadCookies(m.cfg.CookiesPath); err != nil {
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing without.", m.cfg.CookiesPath, err)
		} else if len(cookies) > 0 {
			if err := ctx.AddCookies(cookies); err != nil {
				log.Printf("⚠️ Could not add cookies to context: %v", err)
			} else {
				log.Printf("🍪 Injected %d cookies", len(cookies))
			}
		}
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, err
	}

	return &Session{pw: pw, browser: browser, ctx: ctx, page: page}, nil
}

// Login drives the credential flow best-effort. Any failure is logged and
// swallowed: anti-bot challenges may block part of the flow and the cycle
// must continue regardless.
func (m *Manager) Login(s *Session) {
	page := s.page

	log.Printf("Navigating to %s", loginURL)
	if _, err := page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		log.Printf("⚠️ Login navigation failed: %v", err)
		return
	}

	log.Println("Pausing for login page to fully render")
	time.Sleep(loginSettle)

	// The login flow sometimes opens a popup; drive the most recent page.
	if pages := s.ctx.Pages(); len(pages) > 0 {
		page = pages[len(pages)-1]
		if err := page.BringToFront(); err != nil {
			log.Printf("⚠️ Could not focus latest window: %v", err)
		}
		s.page = page
	}

	log.Println("Submitting username")
	username := page.GetByLabel("Username or email")
	if err := username.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(credentialFieldTimeoutMs),
	}); err != nil {
		log.Printf("⚠️ Username field not found or blocked; continuing without login: %v", err)
		return
	}
	if err := username.Fill(m.cfg.Username); err != nil {
		log.Printf("⚠️ Could not fill username: %v", err)
		return
	}
	if err := username.Press("Enter"); err != nil {
		log.Printf("⚠️ Could not submit username: %v", err)
		return
	}

	log.Println("Submitting password")
	password := page.GetByLabel("Password")
	if err := password.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(credentialFieldTimeoutMs),
	}); err != nil {
		log.Printf("⚠️ Password field not found or blocked; continuing without login: %v", err)
		return
	}
	if err := password.Fill(m.cfg.Password); err != nil {
		log.Printf("⚠️ Could not fill password: %v", err)
		return
	}
	if err := password.Press("Enter"); err != nil {
		log.Printf("⚠️ Could not submit password: %v", err)
		return
	}

	// Blind delay: a secondary challenge may appear here and there is no
	// observable condition for it resolving.
	log.Printf("Pausing %s for credentials verification", m.cfg.VerificationPause())
	time.Sleep(m.cfg.VerificationPause())
}

// RecreateIfNeeded returns the session unchanged while it is alive; otherwise
// it closes the stale handle, acquires a fresh one and logs it in. May return
// nil when acquisition fails entirely.
func (m *Manager) RecreateIfNeeded(s *Session) *Session {
	if s.IsAlive() {
		return s
	}
	log.Println("Session not alive, recreating")
	s.Close()
	next := m.Acquire()
	if next != nil {
		m.Login(next)
	}
	return next
}
