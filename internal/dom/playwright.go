package dom

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Per-field lookups use a short timeout: a field that has not rendered by now
// is treated as absent rather than waited on.
const fieldTimeoutMs = 1500

type locatorNode struct {
	loc playwright.Locator
}

// FromPage wraps a rendered page as the root Element.
func FromPage(page playwright.Page) Element {
	return locatorNode{loc: page.Locator("html")}
}

// FromLocator wraps an already-resolved locator.
func FromLocator(loc playwright.Locator) Element {
	return locatorNode{loc: loc}
}

func (n locatorNode) Text() string {
	text, err := n.loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(fieldTimeoutMs),
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (n locatorNode) Attr(name string) string {
	value, err := n.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(fieldTimeoutMs),
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func (n locatorNode) Find(selector string) (Element, bool) {
	scoped := n.loc.Locator(selector)
	count, err := scoped.Count()
	if err != nil || count == 0 {
		return nil, false
	}
	return locatorNode{loc: scoped.First()}, true
}

func (n locatorNode) FindAll(selector string) []Element {
	locators, err := n.loc.Locator(selector).All()
	if err != nil {
		return nil
	}
	elements := make([]Element, 0, len(locators))
	for _, loc := range locators {
		elements = append(elements, locatorNode{loc: loc})
	}
	return elements
}

func (n locatorNode) Ancestor(tag string) (Element, bool) {
	scoped := n.loc.Locator("xpath=ancestor::" + tag + "[1]")
	count, err := scoped.Count()
	if err != nil || count == 0 {
		return nil, false
	}
	return locatorNode{loc: scoped.First()}, true
}
