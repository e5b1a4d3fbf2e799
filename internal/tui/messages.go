package tui

import (
	"github.com/matheuskafuri/blogreader/internal/article"
)

type articlesLoadedMsg struct {
	articles []article.Article
	offline  bool
}

type loadErrMsg struct {
	err error
}

// articleLoadedMsg carries the id it was requested for, so a response for
// an article that is no longer selected can be dropped.
type articleLoadedMsg struct {
	id      int
	article article.Article
	offline bool
}

type articleErrMsg struct {
	id  int
	err error
}

// termSettledMsg is sent by the search debouncer once typing pauses.
type termSettledMsg struct {
	term string
}

type watchStartedMsg struct {
	changes <-chan struct{}
}

type collectionChangedMsg struct{}

type refreshDoneMsg struct {
	count int
	errs  []error
}

type errMsg struct {
	err error
}
