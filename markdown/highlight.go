package markdown

import (
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter renders code blocks with chroma using CSS classes.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter returns a Highlighter for the named chroma style. Unknown names
// fall back to chroma's default style.
func NewHighlighter(style string) *Highlighter {
	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Lexer picks a lexer for code. The fence language is used when chroma knows it,
// otherwise the language is detected from the code itself.
func Lexer(lang, code string) chroma.Lexer {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Highlight writes code wrapped in <pre><code> with highlighted token spans.
func (h *Highlighter) Highlight(w io.Writer, lang, code string) error {
	lexer := Lexer(lang, code)
	name := strings.ToLower(lexer.Config().Name)
	if _, err := io.WriteString(w, `<pre><code class="chroma language-`+html.EscapeString(name)+`">`); err != nil {
		return err
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	if err := h.formatter.Format(w, h.style, it); err != nil {
		return err
	}
	_, err = io.WriteString(w, "</code></pre>\n")
	return err
}

// WriteCSS writes the class-based stylesheet for the configured style.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}
