package screen

import "sync"

// Generation is a monotonic focus counter. Each fetch captures a token via
// Next before going to the network; when the response arrives, Apply reports
// whether that fetch is still the latest. A rapid focus cycle leaves the
// older response with a stale token, so it is discarded instead of
// overwriting the newer screen state.
type Generation struct {
	m       sync.Mutex
	current uint64
}

// Next advances the counter and returns the token for the fetch being
// started.
func (g *Generation) Next() uint64 {
	g.m.Lock()
	defer g.m.Unlock()
	g.current++
	return g.current
}

// Apply reports whether the fetch holding token is still current.
func (g *Generation) Apply(token uint64) bool {
	g.m.Lock()
	defer g.m.Unlock()
	return token == g.current
}
