package post

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePost() Post {
	return Post{
		Number:    7,
		Title:     "春日",
		Body:      "![cover](https://img.example.com/spring.jpg)\n\n## 樱花\n\nsome text",
		CreatedAt: "2018-03-21T08:15:00Z",
		Labels: []Label{
			{ID: 1, Name: "生活"},
			{ID: 2, Name: "photo"},
		},
		Milestone:  &Milestone{Title: "随笔"},
		Popularity: 42,
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(nil)
	got, err := r.Render(samplePost())
	require.NoError(t, err)

	assert.Equal(t, 7, got.Number)
	assert.Equal(t, "https://img.example.com/spring.jpg", got.CoverURL)
	assert.Equal(t, "2018-03-21", got.DateDisplay)
	assert.Equal(t, "春日", got.Title)
	assert.Equal(t, int64(42), got.Popularity)
	assert.Equal(t, "随笔", got.Category)
	assert.Equal(t, []string{"生活", "photo"}, got.Tags)
	assert.Equal(t, "\n\n## 樱花\n\nsome text", got.Content)
	assert.Contains(t, got.HTML, `<h2 id="樱花">`)
	assert.NotContains(t, got.HTML, "spring.jpg")
}

func TestRenderMissingCover(t *testing.T) {
	p := samplePost()
	p.Body = "no images here, only https://example.com/a.png"
	_, err := NewRenderer(nil).Render(p)
	if !errors.Is(err, ErrMissingCover) {
		t.Fatalf("Render error = %v, want ErrMissingCover", err)
	}
}

func TestCoverAndContentScenario(t *testing.T) {
	body := "intro http://x.com/cover.jpg) rest of body"
	cover, err := Cover(body)
	require.NoError(t, err)
	assert.Equal(t, "http://x.com/cover.jpg", cover)
	assert.Equal(t, " rest of body", Content(body, cover))
}

func TestCoverTakesFirstMatch(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"![](http://a.com/1.jpg)\n![](http://a.com/2.jpg)", "http://a.com/1.jpg"},
		{"text https://cdn.com/x.jpg more", "https://cdn.com/x.jpg"},
		{"http://a.com/x.JPG\nhttp://b.com/y.jpg", "http://b.com/y.jpg"},
	}
	for _, tt := range tests {
		got, err := Cover(tt.body)
		if err != nil {
			t.Errorf("Cover(%q) error: %v", tt.body, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Cover(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestContentWithoutDelimiterIsEmpty(t *testing.T) {
	body := "cover http://x.com/c.jpg without paren"
	cover, err := Cover(body)
	require.NoError(t, err)
	assert.Equal(t, "", Content(body, cover))

	got, err := NewRenderer(nil).Render(Post{Body: body, CreatedAt: "2020-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "", got.HTML)
}

func TestContentKeepsEverythingAfterFirstDelimiter(t *testing.T) {
	body := "![](http://x.com/c.jpg) a ![](http://x.com/c.jpg) b"
	assert.Equal(t, " a ![](http://x.com/c.jpg) b", Content(body, "http://x.com/c.jpg"))
}

func TestDateDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2017-11-02T12:00:00Z", "2017-11-02"},
		{"2017-11-02", "2017-11-02"},
		{"2017", "2017"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DateDisplay(tt.in); got != tt.want {
			t.Errorf("DateDisplay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, Uncategorized, Category(nil))
	assert.Equal(t, Uncategorized, Category(&Milestone{}))
	assert.Equal(t, "技术", Category(&Milestone{Title: "技术"}))
}

func TestTagNamesKeepsOrder(t *testing.T) {
	got := TagNames([]Label{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("TagNames = %v, want [c a b]", got)
	}
	if got := TagNames(nil); len(got) != 0 {
		t.Errorf("TagNames(nil) = %v, want empty", got)
	}
}

func TestHasLabel(t *testing.T) {
	p := samplePost()
	assert.True(t, p.HasLabel("Photo"))
	assert.True(t, p.HasLabel(" 生活 "))
	assert.False(t, p.HasLabel("video"))
}
