package shigure

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shigure/post"
)

// feedSize caps the number of items in the feed.
const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Category    []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// feedItems renders the newest posts into feed items. Posts that cannot be
// rendered are left out.
func (a *App) feedItems(posts []post.Post) []rssItem {
	items := make([]rssItem, 0, min(len(posts), feedSize))
	for _, p := range posts {
		if len(items) == feedSize {
			break
		}
		r, err := a.Renderer.Render(p)
		if err != nil {
			a.Log.Warn("post left out of feed", zap.Int("post", p.Number), zap.Error(err))
			continue
		}
		pubDate := ""
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := PostURL(a.Config.URL, p.Number)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: Summary(r.HTML, summaryLen),
			Category:    append([]string{r.Category}, r.Tags...),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	return items
}

func (a *App) renderRSS(c echo.Context, posts []post.Post) error {
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(a.Config.URL),
			Description: a.Config.Description,
			Items:       a.feedItems(posts),
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
