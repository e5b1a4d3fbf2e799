// Package jsonfile stores articles in a json-server style db.json file:
// {"blogs": [...]}.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/logging"
)

type document struct {
	Blogs []article.Article `json:"blogs"`
}

type Store struct {
	path   string
	now    func() time.Time
	mu     sync.Mutex
	logger *slog.Logger
}

func New(path string) *Store {
	return &Store{
		path:   path,
		now:    time.Now,
		logger: logging.WithComponent("jsonfile"),
	}
}

func (s *Store) Path() string { return s.path }

func (s *Store) ListArticles(ctx context.Context) ([]article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Blogs, nil
}

func (s *Store) GetArticle(ctx context.Context, id int) (article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return article.Article{}, err
	}
	for _, a := range doc.Blogs {
		if a.ID == id {
			return a, nil
		}
	}
	return article.Article{}, article.NotFound(id)
}

// CreateArticle appends the draft with the next free id.
func (s *Store) CreateArticle(ctx context.Context, d article.Draft) (article.Article, error) {
	if err := d.Validate(); err != nil {
		return article.Article{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return article.Article{}, err
	}

	next := 1
	for _, a := range doc.Blogs {
		if a.ID >= next {
			next = a.ID + 1
		}
	}
	created := d.Article(next, s.now())
	doc.Blogs = append(doc.Blogs, created)
	if err := s.write(doc); err != nil {
		return article.Article{}, err
	}
	s.logger.Info("article created", "id", created.ID, "path", s.path)
	return created, nil
}

func (s *Store) Close() error { return nil }

// read treats a missing file as an empty collection.
func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return document{Blogs: []article.Article{}}, nil
	}
	if err != nil {
		return document{}, &article.FetchError{Op: "reading " + s.path, Err: err}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, &article.FetchError{Op: "parsing " + s.path, Err: err}
	}
	if doc.Blogs == nil {
		doc.Blogs = []article.Article{}
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding articles: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing articles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing articles: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Watch emits a signal whenever the file is written, created, renamed or
// removed. The channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: editors and our own writes replace the file.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
					// a signal is already queued
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watch error", "error", err)
			}
		}
	}()
	return changes, nil
}
