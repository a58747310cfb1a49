package observability

import "sync"

// Inmem keeps the last max observations in a ring plus running totals.
type Inmem struct {
	mu     sync.Mutex
	last   []any
	max    int
	totals struct {
		cacheHits, cacheMiss int
		reloadedRows         int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(struct {
		Kind          string
		Source        string
		CacheMs, DbMs float64
	}{"lookup", source, cacheMs, dbMs})
}

func (m *Inmem) ObserveReload(rows int, durMs float64) {
	m.mu.Lock()
	m.totals.reloadedRows += rows
	m.mu.Unlock()
	m.push(struct {
		Kind string
		Rows int
		Dur  float64
	}{"reload", rows, durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(struct {
		Kind          string
		Method, Route string
		Status        int
		Dur           float64
	}{"http", method, route, status, durMs})
}

func (m *Inmem) ObserveIngest(processMs float64, ok bool) {
	m.push(struct {
		Kind string
		Dur  float64
		OK   bool
	}{"ingest", processMs, ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// Snapshot returns hit/miss totals and the number of rows poured into the
// product index by reloads so far.
func (m *Inmem) Snapshot() (hits, misses, reloadedRows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss, m.totals.reloadedRows
}

// Last returns a copy of the retained observations.
func (m *Inmem) Last() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.last...)
}
