package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/matheuskafuri/blogreader/internal/article"
	_ "modernc.org/sqlite"
)

// localKeyPrefix marks articles created with CreateArticle.
const localKeyPrefix = "local:"

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
	now     func() time.Time
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB, now: time.Now}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			key         TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			categories  TEXT NOT NULL DEFAULT '[]',
			description TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			content     TEXT NOT NULL DEFAULT '',
			date        TEXT NOT NULL,
			published   INTEGER NOT NULL,
			fetched_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// StoreKey is the entry key for an article mirrored from a remote store.
func StoreKey(id int) string {
	return "store:" + strconv.Itoa(id)
}

// UpsertArticles inserts or refreshes entries by key.
func (c *Cache) UpsertArticles(entries []Entry) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, key, title, categories, description, cover_image, content, date, published, fetched_at)
		VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title = excluded.title,
			categories = excluded.categories,
			description = excluded.description,
			cover_image = excluded.cover_image,
			content = excluded.content,
			date = excluded.date,
			published = excluded.published,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := c.now()
	for _, e := range entries {
		a := e.Article
		cats, err := json.Marshal(nonNil(a.Category))
		if err != nil {
			return fmt.Errorf("encoding categories for %s: %w", e.Key, err)
		}
		_, err = stmt.Exec(a.ID, e.Key, a.Title, string(cats), a.Description, a.CoverImage, a.Content, a.Date, a.Published().Unix(), now.Unix())
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", e.Key, err)
		}
	}

	return tx.Commit()
}

func (c *Cache) selectArticles() sq.SelectBuilder {
	return sq.Select("id", "title", "categories", "description", "cover_image", "content", "date").
		From("articles").
		RunWith(c.readDB)
}

// GetArticles returns cached articles, most recent first.
func (c *Cache) GetArticles(ctx context.Context, opts QueryOpts) ([]article.Article, error) {
	q := c.selectArticles().OrderBy("published DESC", "id ASC")
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"published": opts.Since.Unix()})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, &article.FetchError{Op: "querying cached articles", Err: err}
	}
	defer rows.Close()

	articles := []article.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, &article.FetchError{Op: "scanning cached article", Err: err}
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &article.FetchError{Op: "reading cached articles", Err: err}
	}
	return articles, nil
}

// ListArticles returns every cached article.
func (c *Cache) ListArticles(ctx context.Context) ([]article.Article, error) {
	return c.GetArticles(ctx, QueryOpts{})
}

func (c *Cache) GetArticle(ctx context.Context, id int) (article.Article, error) {
	row := c.selectArticles().Where(sq.Eq{"id": id}).QueryRowContext(ctx)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return article.Article{}, article.NotFound(id)
	}
	if err != nil {
		return article.Article{}, &article.FetchError{Op: fmt.Sprintf("reading cached article %d", id), Err: err}
	}
	return a, nil
}

// CreateArticle stores a locally written article. The cache assigns the id.
func (c *Cache) CreateArticle(ctx context.Context, d article.Draft) (article.Article, error) {
	if err := d.Validate(); err != nil {
		return article.Article{}, err
	}
	now := c.now()
	a := d.Article(0, now)
	key := localKeyPrefix + strconv.FormatInt(now.UnixNano(), 36)

	cats, err := json.Marshal(a.Category)
	if err != nil {
		return article.Article{}, fmt.Errorf("encoding categories: %w", err)
	}
	res, err := sq.Insert("articles").
		Columns("key", "title", "categories", "description", "cover_image", "content", "date", "published", "fetched_at").
		Values(key, a.Title, string(cats), a.Description, a.CoverImage, a.Content, a.Date, now.Unix(), now.Unix()).
		RunWith(c.writeDB).
		ExecContext(ctx)
	if err != nil {
		return article.Article{}, fmt.Errorf("inserting article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return article.Article{}, fmt.Errorf("reading new id: %w", err)
	}
	a.ID = int(id)
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner) (article.Article, error) {
	var (
		a    article.Article
		cats string
	)
	if err := s.Scan(&a.ID, &a.Title, &cats, &a.Description, &a.CoverImage, &a.Content, &a.Date); err != nil {
		return article.Article{}, err
	}
	if err := json.Unmarshal([]byte(cats), &a.Category); err != nil {
		return article.Article{}, fmt.Errorf("decoding categories: %w", err)
	}
	return a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (c *Cache) NeedsRefresh(interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return c.now().Sub(t) > interval
}

func (c *Cache) SetLastRefresh() error {
	return c.setMeta("last_refresh", c.now().Format(time.RFC3339))
}

// LastRefresh returns when the cache was last synced, zero if never.
func (c *Cache) LastRefresh() time.Time {
	value, err := c.getMeta("last_refresh")
	if err != nil {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func (c *Cache) getMeta(key string) (string, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Prune deletes imported and mirrored articles published before the
// retention window. Articles written locally are never pruned.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", retention)
	}
	cutoff := c.now().Add(-retention)
	res, err := sq.Delete("articles").
		Where(sq.Lt{"published": cutoff.Unix()}).
		Where(sq.NotLike{"key": localKeyPrefix + "%"}).
		RunWith(c.writeDB).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("deleting old articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := c.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats returns the article count and the size of the database file.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return count, info.Size(), nil
}
