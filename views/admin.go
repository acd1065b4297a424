package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/shigure/post"
)

func csrfField(token string) string {
	return `<input type="hidden" name="_csrf" value="` + esc(token) + `">`
}

// AdminLogin is the password form.
func AdminLogin(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<section class="admin"><h1>登录</h1>`); err != nil {
			return err
		}
		if showError {
			if err := write(w, `<p class="error">密码错误</p>`); err != nil {
				return err
			}
		}
		return write(w,
			`<form method="post" action="/admin/login/">`, csrfField(csrfToken),
			`<input type="password" name="password" autocomplete="current-password" required>`,
			`<button type="submit">登录</button></form></section>`,
		)
	})
	return Layout(cfg, PageMeta{Title: "Admin"}, body)
}

// AdminDashboard lists the mirrored posts and offers a manual sync.
func AdminDashboard(cfg SiteConfig, posts []post.Post, message string, csrfToken string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<section class="admin"><h1>镜像文章</h1>`); err != nil {
			return err
		}
		if message != "" {
			if err := write(w, `<p class="message">`, esc(message), `</p>`); err != nil {
				return err
			}
		}
		if err := write(w,
			`<form method="post" action="/admin/sync/">`, csrfField(csrfToken), `<button type="submit">同步</button></form>`,
			`<form method="post" action="/admin/logout/">`, csrfField(csrfToken), `<button type="submit">退出</button></form>`,
			`<table class="admin-posts"><thead><tr><th>#</th><th>标题</th><th>日期</th><th>热度</th><th>封面</th></tr></thead><tbody>`,
		); err != nil {
			return err
		}
		for _, p := range posts {
			cover := "ok"
			if _, err := post.Cover(p.Body); err != nil {
				cover = "missing"
			}
			if err := write(w,
				`<tr><td>`, strconv.Itoa(p.Number), `</td>`,
				`<td><a href="`, PostURL(p.Number), `">`, esc(p.Title), `</a></td>`,
				`<td>`, esc(post.DateDisplay(p.CreatedAt)), `</td>`,
				`<td>`, strconv.FormatInt(p.Popularity, 10), `</td>`,
				`<td class="cover-`, cover, `">`, cover, `</td></tr>`,
			); err != nil {
				return err
			}
		}
		return write(w, `</tbody></table></section>`)
	})
	return Layout(cfg, PageMeta{Title: "Admin"}, body)
}
