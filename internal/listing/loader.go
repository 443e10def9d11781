// Package listing loads the product list page by page for infinite scrolling.
package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/knpstore/sport-store/internal/product"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Loader appends pages from a Source in order. At most one fetch is in flight;
// triggers that arrive while loading or after the last page are ignored.
type Loader struct {
	source   Source
	maxPages int
	log      *slog.Logger
	onChange func()

	mu     sync.Mutex
	state  State
	next   int
	items  []product.Product
	err    error
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Loader)

// WithMaxPages stops loading after n pages even if the source has more.
func WithMaxPages(n int) Option {
	return func(l *Loader) { l.maxPages = n }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithOnChange registers a callback run after each completed load.
func WithOnChange(fn func()) Option {
	return func(l *Loader) { l.onChange = fn }
}

func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{source: source, next: 1, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start loads the first page.
func (l *Loader) Start(ctx context.Context) error {
	_, err := l.LoadMore(ctx)
	return err
}

// LoadMore fetches the next page and blocks until it is applied. It reports
// false when the trigger was ignored.
func (l *Loader) LoadMore(ctx context.Context) (bool, error) {
	page, ok := l.begin()
	if !ok {
		return false, nil
	}
	res, err := l.source.FetchPage(ctx, page)
	l.finish(page, res, err)
	return true, err
}

// Intersect is the "sentinel became visible" signal: it starts loading the next
// page in the background. Use Wait to block until it is applied.
func (l *Loader) Intersect(ctx context.Context) bool {
	page, ok := l.begin()
	if !ok {
		return false
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		res, err := l.source.FetchPage(ctx, page)
		l.finish(page, res, err)
	}()
	return true
}

func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close discards any result that arrives afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Loader) begin() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.state != StateIdle {
		return 0, false
	}
	l.state = StateLoading
	return l.next, true
}

func (l *Loader) finish(page int, res Page, err error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if err != nil {
		l.state = StateIdle
		l.err = err
		l.mu.Unlock()
		l.log.Warn("product page failed", "page", page, "err", err)
		l.notify()
		return
	}

	l.items = append(l.items, res.Items...)
	l.next = page + 1
	l.err = nil
	if !res.HasMore || (l.maxPages > 0 && page >= l.maxPages) {
		l.state = StateExhausted
	} else {
		l.state = StateIdle
	}
	state := l.state
	l.mu.Unlock()

	l.log.Debug("product page loaded", "page", page, "count", len(res.Items), "state", state.String())
	l.notify()
}

func (l *Loader) notify() {
	if l.onChange != nil {
		l.onChange()
	}
}

// Items returns a copy of the loaded products in arrival order.
func (l *Loader) Items() []product.Product {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]product.Product, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader) HasMore() bool {
	return l.State() != StateExhausted
}

// NextPage is the page the next load will request.
func (l *Loader) NextPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}

// Err is the error of the last failed load, cleared by the next success.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
