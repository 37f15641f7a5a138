package storage

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// AsyncStore moves writes of a Backend off the caller's goroutine so a frame
// loop never waits on disk or network. Set only records the value; a single
// writer goroutine stores the latest value per key. Failed writes are logged
// and retried on the next Set or on Close. Get passes through synchronously.
type AsyncStore struct {
	inner   Backend
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]int

	wake  chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
	owned bool
}

var _ Backend = (*AsyncStore)(nil)

// NewAsyncStore starts the writer goroutine. A nil logger discards output.
// Close also closes inner.
func NewAsyncStore(inner Backend, logger *log.Logger) *AsyncStore {
	a := newAsync(inner, logger)
	a.owned = true
	return a
}

// NewAsyncWriter is NewAsyncStore for a backend owned by someone else:
// Close drains the queue and leaves inner open.
func NewAsyncWriter(inner Backend, logger *log.Logger) *AsyncStore {
	return newAsync(inner, logger)
}

func newAsync(inner Backend, logger *log.Logger) *AsyncStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &AsyncStore{
		inner:   inner,
		logger:  logger,
		timeout: 5 * time.Second,
		pending: make(map[string]int),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Get reads through to the wrapped backend. A value still waiting to be
// written wins when it is larger.
func (a *AsyncStore) Get(ctx context.Context, key string) (int, bool, error) {
	v, ok, err := a.inner.Get(ctx, key)

	a.mu.Lock()
	p, queued := a.pending[key]
	a.mu.Unlock()

	if queued && (!ok || p > v) {
		return p, true, nil
	}
	return v, ok, err
}

// Set queues value for key and returns immediately.
func (a *AsyncStore) Set(_ context.Context, key string, value int) error {
	a.queue(key, value)
	select {
	case a.wake <- struct{}{}:
	default: // A wake-up is already pending
	}
	return nil
}

func (a *AsyncStore) queue(key string, value int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.pending[key]; !ok || value > cur {
		a.pending[key] = value
	}
}

func (a *AsyncStore) run() {
	defer close(a.done)
	for {
		select {
		case <-a.wake:
			a.flush()
		case <-a.stop:
			a.flush()
			return
		}
	}
}

// flush writes every queued value. Failures go back into the queue.
func (a *AsyncStore) flush() {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[string]int)
	a.mu.Unlock()

	for key, value := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.inner.Set(ctx, key, value)
		cancel()
		if err != nil {
			a.logger.Warn("best score write failed, will retry", "key", key, "value", value, "err", err)
			a.queue(key, value)
			continue
		}
		a.logger.Debug("best score written", "key", key, "value", value)
	}
}

// Pending returns the number of keys waiting to be written.
func (a *AsyncStore) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Close writes what is queued and stops the writer. The wrapped backend is
// closed too unless the store came from NewAsyncWriter.
func (a *AsyncStore) Close() error {
	a.once.Do(func() {
		close(a.stop)
		<-a.done
	})
	if !a.owned {
		return nil
	}
	return a.inner.Close()
}
