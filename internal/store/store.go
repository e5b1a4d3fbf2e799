// Package store defines the article collection interfaces the client reads
// from and writes to, and picks a backend from config.
package store

import (
	"context"
	"fmt"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/store/api"
	"github.com/matheuskafuri/blogreader/internal/store/jsonfile"
)

type Reader interface {
	ListArticles(ctx context.Context) ([]article.Article, error)
	GetArticle(ctx context.Context, id int) (article.Article, error)
}

type Writer interface {
	CreateArticle(ctx context.Context, d article.Draft) (article.Article, error)
}

type Store interface {
	Reader
	Writer
	Close() error
}

// Watcher is implemented by stores whose collection can change underneath
// the client. Each receive means "list again".
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var (
	_ Store   = (*api.Client)(nil)
	_ Store   = (*jsonfile.Store)(nil)
	_ Store   = (*cache.Cache)(nil)
	_ Store   = (*Mirrored)(nil)
	_ Watcher = (*jsonfile.Store)(nil)
)

// Open builds the store selected by store.backend. The api backend keeps an
// offline mirror in the cache directory.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendAPI:
		mirror, err := cache.Open(config.CachePath("mirror.db"))
		if err != nil {
			return nil, fmt.Errorf("opening offline mirror: %w", err)
		}
		return NewMirrored(api.New(cfg.Store.URL), mirror), nil
	case config.BackendFile:
		return jsonfile.New(cfg.StorePath()), nil
	case config.BackendLocal:
		c, err := cache.Open(cfg.StorePath())
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
