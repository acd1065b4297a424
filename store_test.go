package shigure

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/eringen/shigure/post"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost(number int, created string, labels ...string) post.Post {
	p := post.Post{
		Number:    number,
		Title:     "Post " + created,
		Body:      "![cover](https://img.example.com/" + created + ".jpg)\n## 你好\nbody text",
		CreatedAt: created + "T08:00:00Z",
		URL:       "https://github.com/o/r/issues/1",
	}
	for i, l := range labels {
		p.Labels = append(p.Labels, post.Label{ID: int64(i + 1), Name: l})
	}
	return p
}

func TestNewStoreIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("second open must tolerate the existing url column: %v", err)
	}
	s.Close()
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost(7, "2024-01-15", "go", "随笔")
	p.Milestone = &post.Milestone{Title: "技术"}

	if err := s.SavePost(p); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	got, err := s.GetPost(7)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != p.Title || got.Body != p.Body || got.CreatedAt != p.CreatedAt || got.URL != p.URL {
		t.Fatalf("post mismatch: %+v", got)
	}
	if len(got.Labels) != 2 || got.Labels[1].Name != "随笔" || got.Labels[1].ID != 2 {
		t.Fatalf("labels = %+v", got.Labels)
	}
	if got.Milestone == nil || got.Milestone.Title != "技术" {
		t.Fatalf("milestone = %+v", got.Milestone)
	}
	if got.Popularity != 0 {
		t.Fatalf("popularity = %d, want 0", got.Popularity)
	}
}

func TestSavePostWithoutMilestone(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SavePost(samplePost(1, "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Milestone != nil {
		t.Fatalf("expected nil milestone, got %+v", got.Milestone)
	}
	if got.Labels == nil || len(got.Labels) != 0 {
		t.Fatalf("expected empty labels, got %#v", got.Labels)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsOrderAndLabel(t *testing.T) {
	s := setupTestStore(t)
	for _, p := range []post.Post{
		samplePost(1, "2024-01-01", "go"),
		samplePost(2, "2024-03-01", "Life"),
		samplePost(3, "2024-02-01", "go", "life"),
	} {
		if err := s.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 3, 1}
	if len(all) != len(want) {
		t.Fatalf("got %d posts, want %d", len(all), len(want))
	}
	for i, n := range want {
		if all[i].Number != n {
			t.Fatalf("position %d: got #%d, want #%d", i, all[i].Number, n)
		}
	}

	life, err := s.ListPosts("life")
	if err != nil {
		t.Fatal(err)
	}
	if len(life) != 2 || life[0].Number != 2 || life[1].Number != 3 {
		t.Fatalf("label filter should be case-insensitive, got %+v", life)
	}
}

func TestListLabelsAndMilestones(t *testing.T) {
	s := setupTestStore(t)
	a := samplePost(1, "2024-01-01", "go", "web")
	a.Milestone = &post.Milestone{Title: "技术"}
	b := samplePost(2, "2024-01-02", "go")
	b.Milestone = &post.Milestone{Title: "生活"}
	c := samplePost(3, "2024-01-03")
	c.Milestone = &post.Milestone{Title: "技术"}
	for _, p := range []post.Post{a, b, c} {
		if err := s.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}

	labels, err := s.ListLabels()
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 || labels[0] != "go" || labels[1] != "web" {
		t.Fatalf("labels = %v", labels)
	}
	milestones, err := s.ListMilestones()
	if err != nil {
		t.Fatal(err)
	}
	if len(milestones) != 2 || milestones[0] != "技术" || milestones[1] != "生活" {
		t.Fatalf("milestones = %v", milestones)
	}
}

func TestDeletePostsExcept(t *testing.T) {
	s := setupTestStore(t)
	for i := 1; i <= 4; i++ {
		if err := s.SavePost(samplePost(i, fmt.Sprintf("2024-01-%02d", i))); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.DeletePostsExcept([]int{2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	posts, _ := s.ListPosts("")
	if len(posts) != 2 {
		t.Fatalf("remaining %d, want 2", len(posts))
	}

	n, err = s.DeletePostsExcept(nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
}

func TestHitsSurviveResave(t *testing.T) {
	s := setupTestStore(t)
	p := samplePost(5, "2024-05-05")
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	for want := int64(1); want <= 3; want++ {
		got, err := s.IncrementHits(5)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("IncrementHits = %d, want %d", got, want)
		}
	}
	p.Title = "edited"
	if err := s.SavePost(p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(5)
	if err != nil {
		t.Fatal(err)
	}
	if got.Popularity != 3 || got.Title != "edited" {
		t.Fatalf("got %+v", got)
	}
	if n, _ := s.Hits(99); n != 0 {
		t.Fatalf("unseen post hits = %d", n)
	}
}
