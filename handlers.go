package shigure

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleHome(c echo.Context) error {
	label := c.QueryParam("label")
	posts, err := a.Cache.ListPosts(label)
	if err != nil {
		return err
	}
	labels, err := a.Cache.ListLabels()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Index(posts, label, labels))
}

func (a *App) handlePost(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.ErrNotFound
	}
	p, err := a.Cache.GetPost(number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	ctx := c.Request().Context()
	if n, err := a.Hits.Increment(ctx, number); err != nil {
		a.Log.Warn("hit counter unavailable", zap.Int("post", number), zap.Error(err))
	} else {
		p.Popularity = n
	}
	// A post without a cover fails here and is shown as the server error page.
	r, err := a.Renderer.Render(p)
	if err != nil {
		return fmt.Errorf("render post %d: %w", number, err)
	}
	return Render(c, a.Views.Post(r))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleHighlightCSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/css; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.Markdown.WriteCSS(c.Response())
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.ico")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
