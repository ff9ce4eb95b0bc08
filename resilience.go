package objcache

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/sony/gobreaker"
	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"
)

// ResilienceOptions tunes ResilientPageProvider, in the style of the
// corpus's Default*Config() constructors (DefaultGossipConfig,
// LoggerConfig).
type ResilienceOptions struct {
	// MaxConsecutiveFailures trips the breaker after this many
	// back-to-back AcquirePage failures.
	MaxConsecutiveFailures uint32
	// CooldownOpen is how long the breaker stays open (failing fast)
	// before allowing a single probe request through.
	CooldownOpen time.Duration
	// RetriesPerMinute caps how often a half-open breaker is allowed to
	// probe the underlying provider once it starts failing.
	RetriesPerMinute int64
	Logger           *Logger
}

// DefaultResilienceOptions mirrors the values the teacher's gossip rate
// limiter and breaker-shaped retry logic use elsewhere in the corpus:
// a handful of consecutive failures before giving up, a short cooldown,
// and a conservative probe rate.
func DefaultResilienceOptions() ResilienceOptions {
	return ResilienceOptions{
		MaxConsecutiveFailures: 5,
		CooldownOpen:           2 * time.Second,
		RetriesPerMinute:       6,
		Logger:                 NopLogger(),
	}
}

// ResilientPageProvider wraps a PageProvider with a circuit breaker
// (sony/gobreaker — declared but never imported by the teacher's
// kernel/go.mod, wired here for the first time) and a token-bucket rate
// limiter (yasserelgammal/rate-limiter, used the same way the teacher's
// gossip manager rate-limits peers) so that a persistently failing page
// provider is probed on a schedule instead of hammered on every Alloc.
type ResilientPageProvider struct {
	name    string
	inner   PageProvider
	breaker *gobreaker.CircuitBreaker[unsafe.Pointer]
	limiter *limiter.TokenBucket
	logger  *Logger
}

// NewResilientPageProvider builds the wrapper. The name is used both as
// the breaker's name (for OnStateChange logging) and the rate limiter
// key, so distinct caches get independent budgets.
func NewResilientPageProvider(name string, inner PageProvider, opts ResilienceOptions) (*ResilientPageProvider, error) {
	if opts.Logger == nil {
		opts.Logger = NopLogger()
	}

	r := &ResilientPageProvider{name: name, inner: inner, logger: opts.Logger}

	r.breaker = gobreaker.NewCircuitBreaker[unsafe.Pointer](gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxConsecutiveFailures
		},
		Timeout: opts.CooldownOpen,
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("page provider breaker state change",
				String("cache", name), String("from", from.String()), String("to", to.String()))
		},
	})

	limiterStore := store.NewMemoryStore(time.Minute)
	tb, err := limiter.NewTokenBucket(limiter.Config{
		Rate:     opts.RetriesPerMinute,
		Duration: time.Minute,
		Burst:    opts.RetriesPerMinute,
	}, limiterStore)
	if err != nil {
		return nil, fmt.Errorf("objcache: build page-acquisition rate limiter: %w", err)
	}
	r.limiter = tb

	return r, nil
}

func (r *ResilientPageProvider) AcquirePage() (unsafe.Pointer, error) {
	if r.breaker.State() != gobreaker.StateClosed && !r.limiter.Allow(r.name) {
		return nil, newOutOfMemory(fmt.Errorf("page provider recovering, retry budget exhausted"))
	}

	ptr, err := r.breaker.Execute(func() (unsafe.Pointer, error) {
		return r.inner.AcquirePage()
	})
	if err != nil {
		r.logger.Warn("page acquisition failed", String("cache", r.name), Err(err))
		return nil, newOutOfMemory(err)
	}
	return ptr, nil
}

func (r *ResilientPageProvider) ReleasePage(p unsafe.Pointer) {
	r.inner.ReleasePage(p)
}
