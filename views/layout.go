package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared page shell.
func Layout(cfg SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := cfg.Name
		if meta.Title != "" {
			title = meta.Title + " - " + cfg.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = cfg.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		canonical := meta.URL
		if canonical == "" {
			canonical = buildURL(cfg.URL)
		}
		if err := write(w,
			`<!DOCTYPE html><html lang="zh-CN"><head>`,
			`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, esc(title), `</title>`,
			`<meta name="description" content="`, esc(desc), `">`,
			`<meta property="og:title" content="`, esc(title), `">`,
			`<meta property="og:description" content="`, esc(desc), `">`,
			`<meta property="og:type" content="`, esc(ogType), `">`,
			`<meta property="og:url" content="`, esc(canonical), `">`,
		); err != nil {
			return err
		}
		if meta.Image != "" {
			if err := write(w, `<meta property="og:image" content="`, esc(meta.Image), `">`); err != nil {
				return err
			}
		}
		if err := write(w,
			`<link rel="canonical" href="`, esc(canonical), `">`,
			`<link rel="alternate" type="application/rss+xml" title="`, esc(cfg.Name), `" href="/feed.xml">`,
			`<link rel="stylesheet" href="/public/font-awesome.min.css">`,
			`<link rel="stylesheet" href="/public/style.css">`,
			`<link rel="stylesheet" href="/public/highlight.css">`,
		); err != nil {
			return err
		}
		if meta.JSONLD != "" {
			if err := write(w, `<script type="application/ld+json">`, meta.JSONLD, `</script>`); err != nil {
				return err
			}
		}
		if err := write(w,
			`</head><body><header class="site-header"><nav>`,
			`<a class="site-name" href="/">`, esc(cfg.Name), `</a>`,
			`<a href="/feed.xml"><i class="fa fa-rss" aria-hidden="true"></i></a>`,
			`</nav></header><main>`,
		); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		footer := cfg.Name
		if cfg.Author != "" {
			footer = cfg.Author + " · " + cfg.Name
		}
		return write(w,
			`</main><footer class="site-footer">`, esc(footer), `</footer>`,
			`<script src="/public/zooming.min.js" defer></script>`,
			`<script src="/public/post.js" defer></script>`,
			`</body></html>`,
		)
	})
}
