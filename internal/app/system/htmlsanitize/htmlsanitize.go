// Package htmlsanitize strips unsafe markup from rich-text input before
// it is stored. Session and lesson descriptions accept limited HTML
// from admin editors; everything else is dropped.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize returns s with scripts, event handlers, and unsafe URLs
// removed. Safe formatting tags, links, and tables survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
