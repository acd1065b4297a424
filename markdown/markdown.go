// Package markdown renders post bodies to HTML with goldmark, using the blog's
// own heading, link, image and code block rules.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Formatters holds the markup callbacks applied to every heading, link and image.
// Heading and Link return the opening and closing markup around the rendered children.
type Formatters struct {
	Heading func(level int, text string) (open, close string)
	Link    func(href, title string) (open, close string)
	Image   func(src, alt, title string) string
}

// DefaultFormatters returns the blog's rules: icon headings whose id is the raw
// heading text, links opening in a new tab and zoomable images.
func DefaultFormatters() Formatters {
	return Formatters{
		Heading: FormatHeading,
		Link:    FormatLink,
		Image:   FormatImage,
	}
}

// FormatHeading wraps a heading in an icon. Level 2 headings get the gift icon,
// every other level the leaf. The id is the heading text verbatim so non-Latin
// headings keep a usable anchor.
func FormatHeading(level int, text string) (string, string) {
	icon := "envira"
	if level == 2 {
		icon = "gift"
	}
	lv := strconv.Itoa(level)
	open := `<h` + lv + ` id="` + html.EscapeString(text) + `"><i class="fa fa-` + icon + `" aria-hidden="true"></i> `
	return open, "</h" + lv + ">\n"
}

// FormatLink opens every link in a new browsing context.
func FormatLink(href, _ string) (string, string) {
	return `<a href="` + href + `" target="_blank">`, "</a>"
}

// FormatImage marks every image for the zoom script.
func FormatImage(src, alt, _ string) string {
	return `<img class="zoomable" src="` + src + `" alt="` + html.EscapeString(alt) + `" data-action="zoom" />`
}

type options struct {
	formatters Formatters
	style      string
	sanitizer  *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*options)

// WithFormatters replaces the heading, link and image rules. Nil fields keep the defaults.
func WithFormatters(f Formatters) Option {
	return func(o *options) {
		if f.Heading != nil {
			o.formatters.Heading = f.Heading
		}
		if f.Link != nil {
			o.formatters.Link = f.Link
		}
		if f.Image != nil {
			o.formatters.Image = f.Image
		}
	}
}

// WithStyle selects the chroma style used for code highlighting (default "github").
func WithStyle(name string) Option {
	return func(o *options) {
		o.style = name
	}
}

// WithSanitizer runs the rendered HTML through p before returning it.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(o *options) {
		o.sanitizer = p
	}
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md          goldmark.Markdown
	highlighter *Highlighter
	sanitizer   *bluemonday.Policy
}

// New builds a Renderer. Raw HTML in the source is passed through, matching how
// posts are authored in the issue tracker.
func New(opts ...Option) *Renderer {
	o := options{formatters: DefaultFormatters(), style: "github"}
	for _, opt := range opts {
		opt(&o)
	}
	hl := NewHighlighter(o.style)
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			goldhtml.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&nodeRenderer{formatters: o.formatters, highlighter: hl}, 100),
			),
		),
	)
	return &Renderer{md: md, highlighter: hl, sanitizer: o.sanitizer}
}

// Render returns the HTML for src.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	if r.sanitizer != nil {
		return r.sanitizer.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet for highlighted code blocks.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return r.highlighter.WriteCSS(w)
}

var defaultRenderer = New()

// Markdown returns a templ.Component that renders md as HTML with the default rules.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := defaultRenderer.Render(content)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// SanitizePolicy returns a user-content policy that keeps the markup produced by
// DefaultFormatters and the highlighter intact.
func SanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowElements("i")
	p.AllowAttrs("class", "aria-hidden").OnElements("i")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("target").OnElements("a")
	p.AllowAttrs("class", "data-action").OnElements("img")
	p.AllowAttrs("class").OnElements("span", "code", "pre")
	return p
}

// nodeText concatenates the text below n as it is displayed, with escapes and
// entity references resolved.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			v := t.Segment.Value(source)
			if !t.IsRaw() {
				v = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
			}
			b.Write(v)
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func escapeURL(dest []byte) string {
	return string(util.EscapeHTML(util.URLEscape(dest, true)))
}
