package issues

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueJSON = `{
	"number": %d,
	"title": "post %d",
	"body": "![](https://img.example.com/%d.jpg)\n\nbody",
	"created_at": "2018-05-0%dT10:00:00Z",
	"updated_at": "2018-05-09T10:00:00Z",
	"html_url": "https://github.com/o/r/issues/%d",
	"comments": 2,
	"labels": [{"id": 11, "name": "随笔"}, {"id": 12, "name": "go"}],
	"milestone": %s
}`

func issue(n int, milestone string) string {
	return fmt.Sprintf(issueJSON, n, n, n, n, n, milestone)
}

func TestListIssuesSkipsPullRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/o/r/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		fmt.Fprintf(w, `[%s, {"number": 9, "title": "pr", "pull_request": {"url": "x"}}]`,
			issue(1, `{"title": "技术"}`))
	}))
	defer srv.Close()

	c := New("o", "r", "", WithBaseURL(srv.URL))
	got, err := c.ListIssues(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	is := got[0]
	assert.Equal(t, 1, is.Number)
	assert.Equal(t, "post 1", is.Title)
	require.NotNil(t, is.Milestone)
	assert.Equal(t, "技术", is.Milestone.Title)
	assert.Equal(t, int64(11), is.Labels[0].ID)
	assert.Equal(t, "随笔", is.Labels[0].Name)

	p := is.Post()
	assert.Equal(t, "https://github.com/o/r/issues/1", p.URL)
	assert.Equal(t, "2018-05-01T10:00:00Z", p.CreatedAt)
}

func TestListAllPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		assert.Equal(t, "me", r.URL.Query().Get("creator"))
		switch page {
		case 1:
			fmt.Fprintf(w, "[%s,%s]", issue(1, "null"), issue(2, "null"))
		case 2:
			fmt.Fprintf(w, "[%s]", issue(3, "null"))
		default:
			t.Errorf("unexpected page %d", page)
			fmt.Fprint(w, "[]")
		}
	}))
	defer srv.Close()

	c := New("o", "r", "", WithBaseURL(srv.URL), WithCreator("me"))
	c.PerPage = 2
	got, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Nil(t, got[2].Milestone)
}

func TestGetIssueErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/r/issues/1":
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		case "/repos/o/r/issues/3":
			w.WriteHeader(http.StatusBadGateway)
		case "/repos/o/r/issues/4":
			fmt.Fprint(w, issue(4, "null"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New("o", "r", "", WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := c.GetIssue(ctx, 1)
	assert.True(t, errors.Is(err, ErrRateLimited), "got %v", err)

	_, err = c.GetIssue(ctx, 2)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = c.GetIssue(ctx, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	is, err := c.GetIssue(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, is.Number)
}

func TestTokenIsSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	c := New("o", "r", "secret", WithBaseURL(srv.URL))
	got, err := c.ListIssues(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
