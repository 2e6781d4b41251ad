package strength

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, running due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				next = t
				break
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.fn()
	}
	c.now = target
}

type call struct {
	at       time.Duration
	password string
}

type fakeChecker struct {
	mu    sync.Mutex
	clock *fakeClock
	calls []call
	label string
	err   error
	hook  func(password string) (string, error)
}

func (c *fakeChecker) CheckPassword(_ context.Context, password string) (string, error) {
	c.mu.Lock()
	var at time.Duration
	if c.clock != nil {
		at = c.clock.now
	}
	c.calls = append(c.calls, call{at: at, password: password})
	hook := c.hook
	c.mu.Unlock()

	if hook != nil {
		return hook(password)
	}
	return c.label, c.err
}

func (c *fakeChecker) Calls() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]call(nil), c.calls...)
}

func newTestFetcher(checker *fakeChecker, opts ...FetcherOption) (*Fetcher, *fakeClock) {
	clock := &fakeClock{}
	checker.clock = clock
	opts = append([]FetcherOption{WithAfterFunc(clock.AfterFunc)}, opts...)
	return NewFetcher(checker, opts...), clock
}

func TestFetcher_Debounce(t *testing.T) {
	checker := &fakeChecker{label: "Forte"}
	f, clock := newTestFetcher(checker)
	defer f.Close()

	f.Update("a")
	clock.Advance(100 * time.Millisecond)
	f.Update("ab")
	clock.Advance(150 * time.Millisecond)
	f.Update("abc")

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, checker.Calls())

	clock.Advance(time.Millisecond)
	calls := checker.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 550*time.Millisecond, calls[0].at)
	assert.Equal(t, "abc", calls[0].password)
	assert.Equal(t, "Forte", f.Label())

	clock.Advance(time.Second)
	assert.Len(t, checker.Calls(), 1)
}

func TestFetcher_TeardownBeforeFire(t *testing.T) {
	checker := &fakeChecker{label: "Forte"}
	var labels []string
	f, clock := newTestFetcher(checker, WithOnLabel(func(l string) { labels = append(labels, l) }))

	f.Update("secret")
	clock.Advance(50 * time.Millisecond)
	f.Close()
	clock.Advance(time.Second)

	assert.Empty(t, checker.Calls())
	assert.Empty(t, labels)
	assert.Empty(t, f.Label())
}

func TestFetcher_TeardownWhileInFlight(t *testing.T) {
	checker := &fakeChecker{}
	var labels []string
	f, clock := newTestFetcher(checker, WithOnLabel(func(l string) { labels = append(labels, l) }))
	checker.hook = func(string) (string, error) {
		f.Close()
		return "Forte", nil
	}

	f.Update("secret")
	clock.Advance(DefaultDebounce)

	assert.Len(t, checker.Calls(), 1)
	assert.Empty(t, labels)
	assert.Empty(t, f.Label())
}

func TestFetcher_UpdateAfterCloseIsIgnored(t *testing.T) {
	checker := &fakeChecker{label: "Forte"}
	f, clock := newTestFetcher(checker)
	f.Close()
	f.Close()

	f.Update("secret")
	clock.Advance(time.Second)
	assert.Empty(t, checker.Calls())
}

func TestFetcher_EmptyClearsImmediately(t *testing.T) {
	checker := &fakeChecker{label: "Média"}
	var labels []string
	f, clock := newTestFetcher(checker, WithOnLabel(func(l string) { labels = append(labels, l) }))
	defer f.Close()

	f.Update("Senha123")
	clock.Advance(DefaultDebounce)
	require.Equal(t, "Média", f.Label())

	f.Update("")
	assert.Empty(t, f.Label())
	assert.Equal(t, []string{"Média", ""}, labels)

	clock.Advance(time.Second)
	assert.Len(t, checker.Calls(), 1)
}

func TestFetcher_EmptyCancelsPending(t *testing.T) {
	checker := &fakeChecker{label: "Fraca"}
	f, clock := newTestFetcher(checker)
	defer f.Close()

	f.Update("abc")
	clock.Advance(100 * time.Millisecond)
	f.Update("")
	clock.Advance(time.Second)

	assert.Empty(t, checker.Calls())
	assert.Empty(t, f.Label())
}

func TestFetcher_FailureClearsLabel(t *testing.T) {
	checker := &fakeChecker{label: "Forte"}
	f, clock := newTestFetcher(checker)
	defer f.Close()

	f.Update("Senha@2024!")
	clock.Advance(DefaultDebounce)
	require.Equal(t, "Forte", f.Label())

	checker.label = ""
	checker.err = errors.New("connection refused")
	f.Update("Senha@2024!x")
	clock.Advance(DefaultDebounce)
	assert.Empty(t, f.Label())

	// no retry until the value changes again
	clock.Advance(time.Minute)
	assert.Len(t, checker.Calls(), 2)
}

func TestFetcher_CustomDebounce(t *testing.T) {
	checker := &fakeChecker{label: "Forte"}
	f, clock := newTestFetcher(checker, WithDebounce(time.Second))
	defer f.Close()

	f.Update("abc")
	clock.Advance(DefaultDebounce)
	assert.Empty(t, checker.Calls())
	clock.Advance(time.Second)
	assert.Len(t, checker.Calls(), 1)
}

func TestFetcher_StaleResponseDropped(t *testing.T) {
	first := make(chan struct{})
	release := make(chan struct{})
	checker := &fakeChecker{}
	checker.hook = func(password string) (string, error) {
		if password == "old" {
			close(first)
			<-release
			return "Fraca", nil
		}
		return "Forte", nil
	}

	f := NewFetcher(checker, WithDebounce(5*time.Millisecond))
	defer f.Close()

	f.Update("old")
	<-first

	// newer request completes while the older one is still in flight
	f.Update("newer")
	require.Eventually(t, func() bool { return f.Label() == "Forte" }, time.Second, time.Millisecond)

	close(release)
	require.Eventually(t, func() bool { return len(checker.Calls()) == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "Forte", f.Label())
}

func TestFetcher_RealTimerNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &fakeChecker{label: "Média"}
	got := make(chan string, 1)
	f := NewFetcher(checker,
		WithDebounce(10*time.Millisecond),
		WithOnLabel(func(l string) { got <- l }),
	)

	f.Update("x")
	f.Update("xy")
	f.Update("xyz")

	select {
	case l := <-got:
		assert.Equal(t, "Média", l)
	case <-time.After(time.Second):
		t.Fatal("label not received")
	}
	f.Close()

	calls := checker.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "xyz", calls[0].password)
}
