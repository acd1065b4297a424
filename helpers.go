package shigure

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// summaryLen is the rune length of feed and meta summaries.
const summaryLen = 140

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL returns the absolute link of post number on the site at base.
func PostURL(base string, number int) string {
	return BuildURL(base, "post", strconv.Itoa(number))
}

// Summary extracts the visible text of rendered post HTML, collapses
// whitespace and cuts it to max runes with an ellipsis.
func Summary(html string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, pre").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
