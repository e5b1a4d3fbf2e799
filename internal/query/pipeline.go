package query

import (
	"sort"
	"strings"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
)

// Result is the filtered and sorted view of the collection.
type Result struct {
	Articles []article.Article
	Count    int
	Total    int
}

// Filter returns the articles matching q's term and categories. The input
// slice is not modified.
func Filter(articles []article.Article, q Query) []article.Article {
	term := strings.ToLower(q.Term)
	out := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if !matchesTerm(a, term) {
			continue
		}
		if q.Categories.Len() > 0 && !q.Categories.matchesAny(a.Category) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// term must already be lower-cased.
func matchesTerm(a article.Article, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), term) ||
		strings.Contains(strings.ToLower(a.Description), term)
}

// Sort orders articles in place by date. Equal dates keep their relative
// order; unparsable dates count as the Unix epoch.
func Sort(articles []article.Article, order SortOrder) {
	keys := make([]time.Time, len(articles))
	for i, a := range articles {
		keys[i] = a.Published()
	}
	sort.Stable(byDate{articles: articles, keys: keys, order: order})
}

type byDate struct {
	articles []article.Article
	keys     []time.Time
	order    SortOrder
}

func (b byDate) Len() int { return len(b.articles) }

func (b byDate) Less(i, j int) bool {
	if b.order == Oldest {
		return b.keys[i].Before(b.keys[j])
	}
	return b.keys[i].After(b.keys[j])
}

func (b byDate) Swap(i, j int) {
	b.articles[i], b.articles[j] = b.articles[j], b.articles[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Run filters then sorts.
func Run(articles []article.Article, q Query) Result {
	filtered := Filter(articles, q)
	Sort(filtered, q.Sort)
	return Result{
		Articles: filtered,
		Count:    len(filtered),
		Total:    len(articles),
	}
}

type cacheKey struct {
	version    uint64
	term       string
	categories string
	sort       SortOrder
}

// Pipeline memoises Run for the current article collection. It is not safe
// for concurrent use; the UI event loop owns it.
type Pipeline struct {
	articles []article.Article
	version  uint64

	categories        []string
	categoriesVersion uint64

	last   cacheKey
	result Result
	cached bool

	seq      uint64
	reporter *Reporter
}

// NewPipeline returns a pipeline that reports every execution to r. r may be
// nil.
func NewPipeline(r *Reporter) *Pipeline {
	return &Pipeline{reporter: r, categoriesVersion: ^uint64(0)}
}

// SetArticles replaces the collection. A nil slice is treated as empty.
func (p *Pipeline) SetArticles(articles []article.Article) {
	p.articles = articles
	p.version++
}

func (p *Pipeline) Articles() []article.Article { return p.articles }

// Total is the size of the unfiltered collection.
func (p *Pipeline) Total() int { return len(p.articles) }

// Categories returns the category index for the current collection.
func (p *Pipeline) Categories() []string {
	if p.categoriesVersion != p.version {
		p.categories = Categories(p.articles)
		p.categoriesVersion = p.version
	}
	return p.categories
}

// Result returns the view for q, re-running the pipeline only when the
// collection or any query input changed since the last call.
func (p *Pipeline) Result(q Query) Result {
	key := cacheKey{
		version:    p.version,
		term:       q.Term,
		categories: strings.Join(q.Categories.Sorted(), "\x00"),
		sort:       q.Sort,
	}
	if p.cached && key == p.last {
		return p.result
	}

	p.result = Run(p.articles, q)
	p.last = key
	p.cached = true

	p.seq++
	if p.reporter != nil {
		p.reporter.deliver(p.seq, Report{Count: p.result.Count, Total: p.result.Total})
	}
	return p.result
}
