package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// stealthScript masks the most common automation fingerprints before any
// page script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

func hardenedOptions(channel string) playwright.BrowserTypeLaunchOptions {
	options := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(false),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-gpu",
			"--no-sandbox",
			"--start-maximized",
		},
	}
	if channel != "" {
		options.Channel = playwright.String(channel)
	}
	return options
}

// RandomDelay pauses for a random duration between min and max milliseconds.
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	duration := time.Duration(rand.Intn(max-min)+min) * time.Millisecond
	time.Sleep(duration)
}

// PageDownScroll presses PageDown the given number of times with a fixed
// inter-press delay, then forces a scroll to the bottom of the page. Feed
// content is lazy-loaded and some pages ignore programmatic scroll alone.
func PageDownScroll(page playwright.Page, presses int, delay time.Duration) {
	for i := 0; i < presses; i++ {
		if err := page.Keyboard().Press("PageDown"); err != nil {
			break
		}
		time.Sleep(delay)
	}
	_, _ = page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
