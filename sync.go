package shigure

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/eringen/shigure/issues"
	"github.com/eringen/shigure/post"
)

// IssueSource lists the issues that make up the blog.
type IssueSource interface {
	ListAll(ctx context.Context) ([]issues.Issue, error)
}

// SyncResult summarises one mirror pass.
type SyncResult struct {
	Saved   int
	Deleted int64
	Covers  int
}

// Syncer mirrors issues into the Store.
type Syncer struct {
	Source IssueSource
	Store  *Store
	Cache  *PostCache
	Covers *CoverCache
	Log    *zap.Logger

	// CoverWorkers bounds concurrent cover downloads (default 4).
	CoverWorkers int
}

// Sync saves every open issue as a post, drops posts whose issue is gone,
// invalidates the cache and warms the cover cache.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	list, err := s.Source.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("sync: %w", err)
	}

	keep := make([]int, 0, len(list))
	posts := make([]post.Post, 0, len(list))
	for _, is := range list {
		p := is.Post()
		if err := s.Store.SavePost(p); err != nil {
			return res, fmt.Errorf("sync: save post %d: %w", p.Number, err)
		}
		keep = append(keep, p.Number)
		posts = append(posts, p)
		res.Saved++
	}
	res.Deleted, err = s.Store.DeletePostsExcept(keep)
	if err != nil {
		return res, fmt.Errorf("sync: prune: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate()
	}
	res.Covers = s.prefetchCovers(ctx, posts)
	s.logger().Info("sync finished",
		zap.Int("saved", res.Saved),
		zap.Int64("deleted", res.Deleted),
		zap.Int("covers", res.Covers),
	)
	return res, nil
}

func (s *Syncer) prefetchCovers(ctx context.Context, posts []post.Post) int {
	if s.Covers == nil {
		return 0
	}
	workers := s.CoverWorkers
	if workers <= 0 {
		workers = 4
	}
	p := pool.NewWithResults[bool]().WithMaxGoroutines(workers).WithContext(ctx)
	for _, pp := range posts {
		cover, err := post.Cover(pp.Body)
		if err != nil {
			s.logger().Warn("post has no cover", zap.Int("post", pp.Number))
			continue
		}
		number := pp.Number
		p.Go(func(ctx context.Context) (bool, error) {
			if _, err := s.Covers.Get(ctx, cover); err != nil {
				s.logger().Warn("cover prefetch failed", zap.Int("post", number), zap.Error(err))
				return false, nil
			}
			return true, nil
		})
	}
	results, _ := p.Wait()
	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n
}

// Start runs Sync every interval in the background until the returned stop
// function is called.
func (s *Syncer) Start(interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
					s.logger().Error("scheduled sync failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *Syncer) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
