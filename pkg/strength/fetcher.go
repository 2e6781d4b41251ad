package strength

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is how long input has to stay unchanged before the
// password is sent for a remote check.
const DefaultDebounce = 300 * time.Millisecond

// Checker returns the server side strength label of a password.
type Checker interface {
	CheckPassword(ctx context.Context, password string) (string, error)
}

// Timer is the part of *time.Timer the fetcher needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run once after d.
type AfterFunc func(d time.Duration, fn func()) Timer

// FetcherOption configures the Fetcher.
type FetcherOption func(*Fetcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithAfterFunc replaces the timer source, time.AfterFunc by default.
func WithAfterFunc(fn AfterFunc) FetcherOption {
	return func(f *Fetcher) {
		if fn != nil {
			f.after = fn
		}
	}
}

// WithOnLabel registers a callback invoked on every label change, including clears.
func WithOnLabel(fn func(label string)) FetcherOption {
	return func(f *Fetcher) {
		f.onLabel = fn
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// Fetcher keeps the remote strength label of a changing password up to date.
// Only the last change within the debounce window produces a request and
// responses are discarded once the fetcher is closed or a newer result has
// been applied.
type Fetcher struct {
	checker Checker
	delay   time.Duration
	after   AfterFunc
	onLabel func(string)
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   Timer
	seq     uint64
	applied uint64
	label   string
	closed  bool
}

// NewFetcher creates a Fetcher for the checker.
func NewFetcher(checker Checker, opts ...FetcherOption) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{
		checker: checker,
		delay:   DefaultDebounce,
		after: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Update registers a new password value. An empty value clears the label
// right away, anything else is checked once input settles.
func (f *Fetcher) Update(password string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	f.seq++
	seq := f.seq
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	if password == "" {
		f.applied = seq
		changed := f.setLabel("")
		f.mu.Unlock()
		f.notify(changed, "")
		return
	}

	f.timer = f.after(f.delay, func() { f.fire(seq, password) })
	f.mu.Unlock()
}

// Label returns the last applied server label.
func (f *Fetcher) Label() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.label
}

// Close stops any pending check. Responses arriving afterwards are dropped.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.cancel()
}

func (f *Fetcher) fire(seq uint64, password string) {
	f.mu.Lock()
	// a stopped timer can still fire if it was already running
	if f.closed || seq != f.seq {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.mu.Unlock()

	label, err := f.checker.CheckPassword(f.ctx, password)
	if err != nil {
		f.logger.Debug("remote strength unavailable", "seq", seq, "error", err)
		label = ""
	}

	f.mu.Lock()
	if f.closed || seq < f.applied {
		f.mu.Unlock()
		f.logger.Debug("discarding strength response", "seq", seq)
		return
	}
	f.applied = seq
	changed := f.setLabel(label)
	f.mu.Unlock()
	f.notify(changed, label)
}

// setLabel must be called with mu held.
func (f *Fetcher) setLabel(label string) bool {
	if f.label == label {
		return false
	}
	f.label = label
	return true
}

func (f *Fetcher) notify(changed bool, label string) {
	if changed && f.onLabel != nil {
		f.onLabel(label)
	}
}
