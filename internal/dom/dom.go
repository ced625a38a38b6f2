// Package dom abstracts the rendered page behind a small capability interface
// so extraction logic never sees playwright errors: a lookup that finds
// nothing yields an empty value, not a failure.
package dom

// Element is one node of the rendered page.
type Element interface {
	// Text returns the trimmed visible text, or "" when the node has none
	// or the lookup fails.
	Text() string

	// Attr returns the named attribute, or "" when absent.
	Attr(name string) string

	// Find returns the first descendant matching the selector.
	Find(selector string) (Element, bool)

	// FindAll returns every descendant matching the selector, possibly empty.
	FindAll(selector string) []Element

	// Ancestor returns the closest enclosing element with the given tag name.
	Ancestor(tag string) (Element, bool)
}
