// internal/app/system/htmlsanitize/htmlsanitize_test.go
package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/system/htmlsanitize"
)

func TestSanitize_EmptyInput(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("empty input: got %q", got)
	}
}

func TestSanitize_PlainTextPassesThrough(t *testing.T) {
	in := "Week 3 covers goroutines and channels."
	if got := htmlsanitize.Sanitize(in); got != in {
		t.Errorf("plain text altered: got %q", got)
	}
}

// Descriptions written in the admin editor keep their formatting.
func TestSanitize_KeepsDescriptionFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"paragraph", "<p>Bring your laptop.</p>"},
		{"emphasis", "<p>Read <strong>chapter 4</strong> and <em>chapter 5</em> first.</p>"},
		{"list", "<ul><li>slices</li><li>maps</li></ul>"},
		{"heading", "<h3>Prerequisites</h3>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tc.in); got != tc.in {
				t.Errorf("got %q, want %q", got, tc.in)
			}
		})
	}
}

func TestSanitize_DropsScriptsAndHandlers(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		badness string
	}{
		{"script tag", `<p>Agenda</p><script>alert("x")</script>`, "<script"},
		{"event handler", `<p onclick="steal()">Agenda</p>`, "onclick"},
		{"javascript url", `<a href="javascript:alert(1)">agenda</a>`, "javascript:"},
		{"iframe", `<iframe src="https://evil.example.com"></iframe><p>Agenda</p>`, "<iframe"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tc.in)
			if strings.Contains(got, tc.badness) {
				t.Errorf("output still contains %q: %q", tc.badness, got)
			}
			if !strings.Contains(got, "genda") {
				t.Errorf("visible text lost: %q", got)
			}
		})
	}
}

func TestSanitize_LinksGetNoFollow(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com/syllabus">Syllabus</a>`)
	if !strings.Contains(got, `href="https://example.com/syllabus"`) {
		t.Errorf("safe href dropped: %q", got)
	}
	if !strings.Contains(got, `rel="nofollow"`) {
		t.Errorf("missing rel=nofollow: %q", got)
	}
}

// Schedule tables pasted into descriptions keep their span and style
// attributes; anything else on the cells goes away.
func TestSanitize_TableAttributes(t *testing.T) {
	in := `<table><tr><td colspan="2" data-x="1">Mon and Tue</td><td rowspan="2">Wed</td></tr></table>`
	got := htmlsanitize.Sanitize(in)

	if !strings.Contains(got, `colspan="2"`) || !strings.Contains(got, `rowspan="2"`) {
		t.Errorf("span attributes dropped: %q", got)
	}
	if strings.Contains(got, "data-x") {
		t.Errorf("unexpected attribute survived: %q", got)
	}

	styled := htmlsanitize.Sanitize(`<td style="text-align:center">9:00</td>`)
	if !strings.Contains(styled, "style=") {
		t.Errorf("style attribute dropped from table cell: %q", styled)
	}
}
