package views

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/shigure/post"
)

// PostBody renders the header block and the article of a rendered post. The
// article carries the zoom binding for the images it contains.
func PostBody(r post.Rendered, zoom ZoomConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		cfg, err := json.Marshal(zoom)
		if err != nil {
			return err
		}
		if err := write(w,
			`<div class="post"><div class="post-header">`,
			`<img class="post-cover" alt="" src="`, esc(r.CoverURL), `">`,
			`<div class="post-info"><h2 class="post-title">`, esc(r.Title), `</h2>`,
			`<div class="post-meta">`,
			`<span class="post-meta-item"><i class="fa fa-clock-o" aria-hidden="true"></i> `, esc(r.DateDisplay), `</span>`,
			`<span class="post-meta-item"><i class="fa fa-eye" aria-hidden="true"></i> 热度`, strconv.FormatInt(r.Popularity, 10), `℃</span>`,
			`<span class="post-meta-item"><i class="fa fa-bookmark" aria-hidden="true"></i> `, esc(r.Category), `</span>`,
			`<span class="post-meta-item"><i class="fa fa-tags" aria-hidden="true"></i>`,
		); err != nil {
			return err
		}
		for _, tag := range r.Tags {
			if err := write(w, ` <a class="post-tag" href="`, esc(LabelURL(tag)), `">`, esc(tag), `</a>`); err != nil {
				return err
			}
		}
		return write(w,
			`</span></div></div></div>`,
			`<article class="post-content" data-zoom="`, esc(string(cfg)), `">`,
			r.HTML,
			`</article></div>`,
		)
	})
}

// PostPage is the full post page.
func PostPage(cfg SiteConfig, r post.Rendered) templ.Component {
	meta := PageMeta{
		Title:  r.Title,
		URL:    buildURL(cfg.URL, "post", strconv.Itoa(r.Number)),
		OGType: "article",
		Image:  r.CoverURL,
		JSONLD: BlogPostingJsonLD(cfg, r),
	}
	return Layout(cfg, meta, PostBody(r, DefaultZoom()))
}
