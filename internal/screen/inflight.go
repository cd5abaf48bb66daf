package screen

import "sync"

// Inflight guards against double submission. Begin returns false while a
// mutation for the same key is still pending; the caller treats that as a
// no-op rather than queueing a second request.
type Inflight struct {
	m       sync.Mutex
	pending map[string]struct{}
}

func NewInflight() *Inflight {
	return &Inflight{pending: map[string]struct{}{}}
}

// Begin claims the key. It returns false when the key is already pending.
func (i *Inflight) Begin(key string) bool {
	i.m.Lock()
	defer i.m.Unlock()

	if _, ok := i.pending[key]; ok {
		return false
	}
	i.pending[key] = struct{}{}
	return true
}

// End releases the key. Safe to call for a key that was never claimed.
func (i *Inflight) End(key string) {
	i.m.Lock()
	defer i.m.Unlock()
	delete(i.pending, key)
}
