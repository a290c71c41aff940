package exchange

//
// LiveCache governs a facade's volatile snapshots. It starts disabled; while disabled every read
// goes to the venue and nothing is kept. While enabled, each slot fetches a key at most once and
// reuses the snapshot until the cache is disabled or cleared.
//
type LiveCache struct {
	enabled bool
	slots   []interface{ reset() }
}

func NewLiveCache() *LiveCache {
	return &LiveCache{}
}

func (o *LiveCache) Enabled() bool {
	return o.enabled
}

//
// Enable moves a disabled cache to enabled-and-empty. Enabling an enabled cache keeps its contents.
//
func (o *LiveCache) Enable() {
	o.enabled = true
}

//
// Disable drops every snapshot and stops caching.
//
func (o *LiveCache) Disable() {
	o.enabled = false

	for _, s := range o.slots {
		s.reset()
	}
}

//
// Clear drops every snapshot and leaves the cache enabled.
//
func (o *LiveCache) Clear() {
	o.Disable()
	o.Enable()
}

//
// LiveSlot is one kind of snapshot held by a LiveCache, keyed by K.
//
type LiveSlot[K comparable, V any] struct {
	cache   *LiveCache
	entries map[K]V
}

//
// NewLiveSlot registers a new slot with cache.
//
func NewLiveSlot[K comparable, V any](cache *LiveCache) *LiveSlot[K, V] {
	s := &LiveSlot[K, V]{
		cache:   cache,
		entries: make(map[K]V),
	}

	cache.slots = append(cache.slots, s)

	return s
}

//
// Load returns the snapshot for key, calling fetch when there is none. The result is kept only when
// the cache is enabled and fetch succeeded.
//
func (o *LiveSlot[K, V]) Load(key K, fetch func() (V, error)) (V, error) {
	if v, ok := o.Peek(key); ok {
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	o.Store(key, v)

	return v, nil
}

//
// Peek returns the snapshot for key without fetching.
//
func (o *LiveSlot[K, V]) Peek(key K) (V, bool) {
	v, ok := o.entries[key]

	return v, ok
}

//
// Store keeps v under key if the cache is enabled.
//
func (o *LiveSlot[K, V]) Store(key K, v V) {
	if o.cache.enabled {
		o.entries[key] = v
	}
}

//
// Forget drops the snapshot for key.
//
func (o *LiveSlot[K, V]) Forget(key K) {
	delete(o.entries, key)
}

func (o *LiveSlot[K, V]) reset() {
	clear(o.entries)
}

//
// WithLiveCache runs fn with api's live cache enabled. A cache that was disabled is enabled for the
// duration and disabled again however fn returns; an enabled cache is left alone.
//
func WithLiveCache(api API, fn func() error) error {
	if !api.LiveCacheEnabled() {
		api.EnableLiveCache()
		defer api.DisableLiveCache()
	}

	return fn()
}
