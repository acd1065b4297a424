package shigure

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/shigure/post"
)

// Store wraps a SQLite database holding the local mirror of issue posts and
// their view counts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a sync writes; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    number INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    labels TEXT NOT NULL DEFAULT '[]',
    milestone TEXT,
    synced_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS hits (
    number INTEGER PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE posts ADD COLUMN url TEXT NOT NULL DEFAULT '';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

const postColumns = `p.number, p.title, p.body, p.created_at, p.labels, p.milestone, p.url, COALESCE(h.count, 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (post.Post, error) {
	var (
		p         post.Post
		labels    string
		milestone sql.NullString
	)
	if err := row.Scan(&p.Number, &p.Title, &p.Body, &p.CreatedAt, &labels, &milestone, &p.URL, &p.Popularity); err != nil {
		return post.Post{}, err
	}
	if err := json.Unmarshal([]byte(labels), &p.Labels); err != nil {
		return post.Post{}, fmt.Errorf("post %d labels: %w", p.Number, err)
	}
	if milestone.Valid {
		p.Milestone = &post.Milestone{Title: milestone.String}
	}
	return p, nil
}

// ListPosts returns mirrored posts ordered by creation time, newest first.
// If label is non-empty, results are limited to posts carrying that label.
func (s *Store) ListPosts(label string) ([]post.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts p LEFT JOIN hits h ON h.number = p.number ORDER BY p.created_at DESC, p.number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		if label != "" && !p.HasLabel(label) {
			continue
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost returns a single post by issue number.
func (s *Store) GetPost(number int) (post.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts p LEFT JOIN hits h ON h.number = p.number WHERE p.number = ?`, number)
	return scanPost(row)
}

// ListLabels returns a sorted, deduplicated slice of label names across all posts.
func (s *Store) ListLabels() ([]string, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, l := range p.Labels {
			set[l.Name] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for name := range set {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

// ListMilestones returns the distinct milestone titles in use, sorted.
func (s *Store) ListMilestones() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT milestone FROM posts WHERE milestone IS NOT NULL AND milestone != '' ORDER BY milestone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SavePost upserts a mirrored post. View counts are kept.
func (s *Store) SavePost(p post.Post) error {
	labels := p.Labels
	if labels == nil {
		labels = []post.Label{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	var milestone sql.NullString
	if p.Milestone != nil {
		milestone = sql.NullString{String: p.Milestone.Title, Valid: true}
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO posts (number, title, body, created_at, labels, milestone, url, synced_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Number, p.Title, p.Body, p.CreatedAt, string(encoded), milestone, p.URL, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeletePostsExcept removes every post whose number is not in keep.
func (s *Store) DeletePostsExcept(keep []int) (int64, error) {
	if len(keep) == 0 {
		res, err := s.db.Exec(`DELETE FROM posts`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, n := range keep {
		args[i] = n
	}
	res, err := s.db.Exec(`DELETE FROM posts WHERE number NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IncrementHits adds one view to a post and returns the new count.
func (s *Store) IncrementHits(number int) (int64, error) {
	var count int64
	err := s.db.QueryRow(`INSERT INTO hits (number, count) VALUES (?, 1)
ON CONFLICT(number) DO UPDATE SET count = count + 1
RETURNING count`, number).Scan(&count)
	return count, err
}

// Hits returns the view count of a post, zero when it was never viewed.
func (s *Store) Hits(number int) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT count FROM hits WHERE number = ?`, number).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
