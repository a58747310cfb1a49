package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/Tato-23/TareaTiendaOnline/internal/config"
)

var ErrOpenState = errors.New("circuit breaker is open")

type State uint8

const (
	Closed State = iota
	Open
	HalfOpen
)

// Breaker guards the ingestion path against a repeatedly failing store.
// Closed passes everything through; after Threshold consecutive failures it
// opens and rejects until OpenTimeout elapses, then lets at most MaxHalfOpen
// probes through before deciding.
type Breaker struct {
	mu  sync.Mutex
	cfg config.Breaker

	state       State
	failCount   uint32
	openedAt    time.Time
	halfOpenReq uint32
}

func New(cfg config.Breaker) *Breaker {
	return &Breaker{cfg: cfg, state: Closed}
}

func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case Open:
		if time.Since(b.openedAt) < b.cfg.OpenTimeout {
			return ErrOpenState
		}
		b.state = HalfOpen
		b.halfOpenReq = 0
		fallthrough
	case HalfOpen:
		if b.halfOpenReq >= b.cfg.MaxHalfOpen {
			return ErrOpenState
		}
		b.halfOpenReq++
		return nil
	}
	return nil
}

func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.state = Closed
		b.failCount = 0
	case Closed:
		b.failCount = 0
	}
}

func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failCount++
		if b.failCount >= b.cfg.Threshold {
			b.open()
		}
	case HalfOpen:
		b.open()
	}
}

// open transitions to Open; caller holds the lock.
func (b *Breaker) open() {
	b.state = Open
	b.openedAt = time.Now()
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
