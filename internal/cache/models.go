package cache

import (
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
)

// Entry is an article plus the key identifying where it came from. Feed
// items use a hash of their link; mirrored store articles use "store:<id>".
// An Article.ID of zero lets the cache assign one.
type Entry struct {
	Key     string
	Article article.Article
}

type QueryOpts struct {
	Since time.Time
	Limit int
}
