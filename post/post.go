// Package post turns raw issue-backed posts into display-ready documents.
package post

import (
	"errors"
	"regexp"
	"strings"

	"github.com/eringen/shigure/markdown"
)

// Uncategorized is shown in place of a milestone title when a post has none.
const Uncategorized = "未分类"

// ErrMissingCover is returned when a post body carries no cover image URL.
var ErrMissingCover = errors.New("post: body has no cover image")

// reCover matches the first http...jpg run on a single line.
var reCover = regexp.MustCompile(`http.+jpg`)

// Label is a tag attached to a post.
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Milestone groups posts into a category.
type Milestone struct {
	Title string `json:"title"`
}

// Post is a single entry as mirrored from the issue tracker.
type Post struct {
	Number     int
	Title      string
	Body       string
	CreatedAt  string
	Labels     []Label
	Milestone  *Milestone
	Popularity int64
	URL        string
}

// Rendered is the display form of a Post. It is derived on every call and never cached.
type Rendered struct {
	Number      int
	CoverURL    string
	DateDisplay string
	Title       string
	Popularity  int64
	Category    string
	Tags        []string
	Content     string
	HTML        string
}

// Renderer converts posts using a markdown renderer.
type Renderer struct {
	md *markdown.Renderer
}

// NewRenderer returns a Renderer backed by md. A nil md uses markdown.New().
func NewRenderer(md *markdown.Renderer) *Renderer {
	if md == nil {
		md = markdown.New()
	}
	return &Renderer{md: md}
}

// Render extracts the cover, strips it from the body and renders the remainder.
func (r *Renderer) Render(p Post) (Rendered, error) {
	cover, err := Cover(p.Body)
	if err != nil {
		return Rendered{}, err
	}
	content := Content(p.Body, cover)
	html, err := r.md.Render(content)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Number:      p.Number,
		CoverURL:    cover,
		DateDisplay: DateDisplay(p.CreatedAt),
		Title:       p.Title,
		Popularity:  p.Popularity,
		Category:    Category(p.Milestone),
		Tags:        TagNames(p.Labels),
		Content:     content,
		HTML:        html,
	}, nil
}

// Cover returns the first http...jpg substring of body.
func Cover(body string) (string, error) {
	cover := reCover.FindString(body)
	if cover == "" {
		return "", ErrMissingCover
	}
	return cover, nil
}

// Content returns everything after the first "cover)" in body, or "" when the
// delimiter is absent.
func Content(body, cover string) string {
	_, after, found := strings.Cut(body, cover+")")
	if !found {
		return ""
	}
	return after
}

// DateDisplay returns the YYYY-MM-DD prefix of an RFC 3339 timestamp.
func DateDisplay(createdAt string) string {
	if len(createdAt) < 10 {
		return createdAt
	}
	return createdAt[:10]
}

// Category returns the milestone title or Uncategorized.
func Category(m *Milestone) string {
	if m == nil || m.Title == "" {
		return Uncategorized
	}
	return m.Title
}

// TagNames returns label names in order.
func TagNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

// HasLabel reports whether p carries a label named name, ignoring case.
func (p Post) HasLabel(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range p.Labels {
		if strings.ToLower(strings.TrimSpace(l.Name)) == name {
			return true
		}
	}
	return false
}
