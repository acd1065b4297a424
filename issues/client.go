// Package issues reads blog posts from a GitHub repository's issue tracker.
package issues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/eringen/shigure/post"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

const defaultPerPage = 50

var (
	// ErrNotFound is returned for a missing repository or issue.
	ErrNotFound = errors.New("issues: not found")
	// ErrRateLimited is returned when the API quota is exhausted.
	ErrRateLimited = errors.New("issues: rate limited")
)

// Issue is the subset of a GitHub issue used as a post.
type Issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	HTMLURL     string          `json:"html_url"`
	Comments    int             `json:"comments"`
	Labels      []post.Label    `json:"labels"`
	Milestone   *post.Milestone `json:"milestone"`
	PullRequest *struct{}       `json:"pull_request,omitempty"`
}

// Post converts the issue into a post. Popularity is filled in by the hit counter.
func (i Issue) Post() post.Post {
	return post.Post{
		Number:    i.Number,
		Title:     i.Title,
		Body:      i.Body,
		CreatedAt: i.CreatedAt,
		Labels:    i.Labels,
		Milestone: i.Milestone,
		URL:       i.HTMLURL,
	}
}

// Client talks to the issues API of one repository.
type Client struct {
	BaseURL string
	Owner   string
	Repo    string
	Creator string // only issues opened by this user, when set
	PerPage int
	HTTP    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimRight(u, "/") }
}

// WithCreator limits listings to issues opened by login.
func WithCreator(login string) Option {
	return func(c *Client) { c.Creator = login }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// New returns a Client for owner/repo. A non-empty token authenticates requests.
func New(owner, repo, token string, opts ...Option) *Client {
	c := &Client{
		BaseURL: DefaultBaseURL,
		Owner:   owner,
		Repo:    repo,
		PerPage: defaultPerPage,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc := oauth2.NewClient(context.Background(), ts)
		hc.Timeout = 15 * time.Second
		c.HTTP = hc
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListIssues returns one page of open issues, newest first. Pull requests are skipped.
func (c *Client) ListIssues(ctx context.Context, page int) ([]Issue, error) {
	raw, err := c.listPage(ctx, page)
	if err != nil {
		return nil, err
	}
	return withoutPulls(raw), nil
}

// ListAll pages through every open issue.
func (c *Client) ListAll(ctx context.Context) ([]Issue, error) {
	var all []Issue
	for page := 1; ; page++ {
		raw, err := c.listPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list issues page %d: %w", page, err)
		}
		all = append(all, withoutPulls(raw)...)
		if len(raw) < c.PerPage {
			return all, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, page int) ([]Issue, error) {
	q := url.Values{}
	q.Set("state", "open")
	q.Set("sort", "created")
	q.Set("direction", "desc")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.PerPage))
	if c.Creator != "" {
		q.Set("creator", c.Creator)
	}
	var raw []Issue
	if err := c.get(ctx, c.repoPath()+"/issues?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func withoutPulls(raw []Issue) []Issue {
	out := make([]Issue, 0, len(raw))
	for _, is := range raw {
		if is.PullRequest == nil {
			out = append(out, is)
		}
	}
	return out
}

// GetIssue returns a single issue by number.
func (c *Client) GetIssue(ctx context.Context, number int) (Issue, error) {
	var is Issue
	if err := c.get(ctx, c.repoPath()+"/issues/"+strconv.Itoa(number), &is); err != nil {
		return Issue{}, err
	}
	if is.PullRequest != nil {
		return Issue{}, ErrNotFound
	}
	return is, nil
}

func (c *Client) repoPath() string {
	return c.BaseURL + "/repos/" + url.PathEscape(c.Owner) + "/" + url.PathEscape(c.Repo)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) &&
		resp.Header.Get("X-RateLimit-Remaining") == "0":
		return ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("issues: GET %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("issues: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
