package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a limited number of probe calls.
	StateHalfOpen
)

var stateNames = [...]string{"closed", "open", "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Breaker guards one downstream. MaxFailures consecutive failures open it;
// after Timeout it admits up to HalfOpenLimit probes, and HalfOpenLimit
// successes close it again. A failed probe reopens it.
type Breaker struct {
	cfg      config.CircuitBreakerConfig
	onChange func(from, to State)
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// NewBreaker creates a closed breaker. onChange, when set, is called after
// every transition outside the breaker's lock.
func NewBreaker(cfg config.CircuitBreakerConfig, onChange func(from, to State)) *Breaker {
	return &Breaker{cfg: cfg, onChange: onChange, now: time.Now}
}

// Allow reserves a call slot or returns ErrCircuitOpen.
func (b *Breaker) Allow() error {
	b.mu.Lock()

	var from State

	changed := false

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}

		from, changed = b.setState(StateHalfOpen)
		b.inFlight = 1

	case StateHalfOpen:
		if b.inFlight >= b.cfg.HalfOpenLimit {
			b.mu.Unlock()
			return ErrCircuitOpen
		}

		b.inFlight++
	}

	b.mu.Unlock()
	b.notify(changed, from, StateHalfOpen)

	return nil
}

// Record reports the outcome of a call admitted by Allow.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()

	var (
		from    State
		to      State
		changed bool
	)

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			break
		}

		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			to = StateOpen
			from, changed = b.setState(to)
		}

	case StateHalfOpen:
		b.inFlight--

		if !success {
			to = StateOpen
			from, changed = b.setState(to)

			break
		}

		b.successes++
		if b.successes >= b.cfg.HalfOpenLimit {
			to = StateClosed
			from, changed = b.setState(to)
		}
	}

	b.mu.Unlock()
	b.notify(changed, from, to)
}

// Release returns a slot reserved by Allow without recording an outcome.
// Calls canceled by the caller say nothing about the downstream.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// setState must be called with mu held.
func (b *Breaker) setState(to State) (State, bool) {
	from := b.state
	if from == to {
		return from, false
	}

	b.state = to
	b.failures = 0
	b.successes = 0

	if to == StateOpen {
		b.openedAt = b.now()
		b.inFlight = 0
	}

	return from, true
}

func (b *Breaker) notify(changed bool, from, to State) {
	if changed && b.onChange != nil {
		b.onChange(from, to)
	}
}
