package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/shigure/post"
)

// PostList renders the label filter and one card per post.
func PostList(posts []post.Post, activeLabel string, labels []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<div class="labels"><a class="`, LabelClass(activeLabel == ""), `" href="/">全部</a>`); err != nil {
			return err
		}
		for _, l := range labels {
			active := strings.EqualFold(l, activeLabel)
			if err := write(w, `<a class="`, LabelClass(active), `" href="`, esc(LabelURL(l)), `">`, esc(l), `</a>`); err != nil {
				return err
			}
		}
		if err := write(w, `</div>`); err != nil {
			return err
		}
		if len(posts) == 0 {
			return write(w, `<p class="empty">暂无文章</p>`)
		}
		if err := write(w, `<ul class="post-list">`); err != nil {
			return err
		}
		for _, p := range posts {
			link := PostURL(p.Number)
			if err := write(w, `<li class="post-card">`); err != nil {
				return err
			}
			if _, err := post.Cover(p.Body); err == nil {
				if err := write(w,
					`<a href="`, link, `"><img class="post-card-cover" loading="lazy" alt="" src="/cover/`, strconv.Itoa(p.Number), `/"></a>`,
				); err != nil {
					return err
				}
			}
			if err := write(w,
				`<div class="post-card-info"><a class="post-card-title" href="`, link, `">`, esc(p.Title), `</a>`,
				`<span class="post-card-date">`, esc(post.DateDisplay(p.CreatedAt)), `</span>`,
				`<span class="post-card-category">`, esc(post.Category(p.Milestone)), `</span>`,
				`</div></li>`,
			); err != nil {
				return err
			}
		}
		return write(w, `</ul>`)
	})
}

// Index is the home page.
func Index(cfg SiteConfig, posts []post.Post, activeLabel string, labels []string) templ.Component {
	meta := PageMeta{JSONLD: WebsiteJsonLD(cfg)}
	if activeLabel != "" {
		meta.Title = activeLabel
		meta.URL = buildURL(cfg.URL) + strings.TrimPrefix(LabelURL(activeLabel), "/")
	}
	return Layout(cfg, meta, PostList(posts, activeLabel, labels))
}
