package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func message(title, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<section class="error-page"><h1>`, esc(title), `</h1><p>`, esc(text), `</p><a href="/">返回首页</a></section>`)
	})
}

func NotFound(cfg SiteConfig) templ.Component {
	return Layout(cfg, PageMeta{Title: "404"}, message("404", "页面不存在"))
}

func ServerError(cfg SiteConfig) templ.Component {
	return Layout(cfg, PageMeta{Title: "500"}, message("500", "页面渲染失败"))
}
