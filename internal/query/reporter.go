package query

import "fmt"

// Report is the result count of one pipeline execution.
type Report struct {
	Count int
	Total int
}

func (r Report) Filtered() bool { return r.Count != r.Total }

func (r Report) String() string {
	noun := "articles"
	if r.Total == 1 {
		noun = "article"
	}
	if r.Filtered() {
		return fmt.Sprintf("%d of %d %s", r.Count, r.Total, noun)
	}
	return fmt.Sprintf("%d %s available", r.Count, noun)
}

type Listener func(Report)

// Reporter forwards result counts to a single listener, dropping reports
// from executions older than the last one delivered.
type Reporter struct {
	listener  Listener
	delivered uint64
}

func NewReporter(l Listener) *Reporter {
	return &Reporter{listener: l}
}

func (r *Reporter) deliver(seq uint64, rep Report) {
	if r.listener == nil || seq <= r.delivered {
		return
	}
	r.delivered = seq
	r.listener(rep)
}
