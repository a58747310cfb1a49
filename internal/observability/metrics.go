package observability

// Metrics collects cheap counters and timings for the cache layer, the
// HTTP surface and the optional ingestion path.
type Metrics interface {
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveReload(rows int, durMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveIngest(processMs float64, ok bool)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveReload(int, float64)               {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveIngest(float64, bool)              {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
