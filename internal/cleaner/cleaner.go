// Package cleaner sanitizes HTML that providers embed in listing
// descriptions before it reaches scoring or storage.
package cleaner

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Cleaner sanitizes listing HTML using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
}

// New creates a cleaner that allows basic formatting but strips
// dangerous elements. Links keep their href so the risk scorer can
// inspect them later.
func New() *Cleaner {
	policy := bluemonday.NewPolicy()

	policy.AllowElements("p", "br", "div", "span")
	policy.AllowElements("strong", "b", "em", "i", "u")
	policy.AllowElements("ul", "ol", "li")

	policy.AllowAttrs("href").OnElements("a")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return &Cleaner{policy: policy}
}

// Clean sanitizes listing HTML, preserving basic formatting.
func (c *Cleaner) Clean(html string) string {
	return c.policy.Sanitize(html)
}

// CleanToText removes all HTML and returns plain text.
func (c *Cleaner) CleanToText(html string) string {
	text := bluemonday.StrictPolicy().Sanitize(html)

	text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	return strings.TrimSpace(text)
}
