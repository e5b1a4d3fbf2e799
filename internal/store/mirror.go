package store

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/logging"
)

// Mirrored copies every article read from the primary store into the cache
// and serves the cached copy when the primary cannot be reached.
type Mirrored struct {
	primary Store
	mirror  *cache.Cache
	offline atomic.Bool
	logger  *slog.Logger
}

func NewMirrored(primary Store, mirror *cache.Cache) *Mirrored {
	return &Mirrored{
		primary: primary,
		mirror:  mirror,
		logger:  logging.WithComponent("mirror"),
	}
}

// Offline reports whether the last read was served from the mirror. Any
// successful read from the primary clears it.
func (m *Mirrored) Offline() bool { return m.offline.Load() }

func (m *Mirrored) ListArticles(ctx context.Context) ([]article.Article, error) {
	articles, err := m.primary.ListArticles(ctx)
	if err == nil {
		m.offline.Store(false)
		m.save(articles...)
		if err := m.mirror.SetLastRefresh(); err != nil {
			m.logger.Warn("recording refresh", "error", err)
		}
		return articles, nil
	}
	if !errors.Is(err, article.ErrFetch) {
		return nil, err
	}

	cached, cerr := m.mirror.ListArticles(ctx)
	if cerr != nil || len(cached) == 0 {
		return nil, err
	}
	m.offline.Store(true)
	m.logger.Warn("serving offline mirror", "error", err, "count", len(cached))
	return cached, nil
}

func (m *Mirrored) GetArticle(ctx context.Context, id int) (article.Article, error) {
	a, err := m.primary.GetArticle(ctx, id)
	if err == nil {
		m.offline.Store(false)
		m.save(a)
		return a, nil
	}
	if !errors.Is(err, article.ErrFetch) {
		return article.Article{}, err
	}

	cached, cerr := m.mirror.GetArticle(ctx, id)
	if cerr != nil {
		return article.Article{}, err
	}
	m.offline.Store(true)
	m.logger.Warn("serving offline mirror", "error", err, "id", id)
	return cached, nil
}

// CreateArticle always goes to the primary. There is no offline queue.
func (m *Mirrored) CreateArticle(ctx context.Context, d article.Draft) (article.Article, error) {
	a, err := m.primary.CreateArticle(ctx, d)
	if err != nil {
		return article.Article{}, err
	}
	m.save(a)
	return a, nil
}

func (m *Mirrored) Close() error {
	return errors.Join(m.primary.Close(), m.mirror.Close())
}

func (m *Mirrored) save(articles ...article.Article) {
	entries := make([]cache.Entry, len(articles))
	for i, a := range articles {
		entries[i] = cache.Entry{Key: cache.StoreKey(a.ID), Article: a}
	}
	if err := m.mirror.UpsertArticles(entries); err != nil {
		m.logger.Warn("updating mirror", "error", err)
	}
}
