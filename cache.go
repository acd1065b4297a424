package shigure

import (
	"database/sql"
	"sync"
	"time"

	"github.com/eringen/shigure/post"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of mirrored posts and labels with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []post.Post
	labels  []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.labels = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return err
	}
	labels, err := c.store.ListLabels()
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []post.Post{}
	}
	c.posts = posts
	c.labels = labels
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and labels after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]post.Post, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, labels := c.posts, c.labels
		c.mu.RUnlock()
		return posts, labels, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.labels, nil
}

// ListPosts returns posts, optionally filtered by label.
func (c *PostCache) ListPosts(label string) ([]post.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if label == "" {
		return posts, nil
	}
	var filtered []post.Post
	for _, p := range posts {
		if p.HasLabel(label) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ListLabels returns all label names in use.
func (c *PostCache) ListLabels() ([]string, error) {
	_, labels, err := c.ensureLoaded()
	return labels, err
}

// GetPost returns a single post by issue number from the cache.
func (c *PostCache) GetPost(number int) (post.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return post.Post{}, err
	}
	for _, p := range posts {
		if p.Number == number {
			return p, nil
		}
	}
	return post.Post{}, ErrNotFound
}
