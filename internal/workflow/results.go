package workflow

// Results is an insertion-ordered map from plugin key to the response that
// plugin produced. A key is present only for plugins that ran to success or
// to a recorded failure; skipped plugins never appear.
type Results struct {
	order   []string
	entries map[string]any
}

// NewResults creates an empty result map.
func NewResults() *Results {
	return &Results{entries: make(map[string]any)}
}

// Set records a response under the given plugin key, appending the key to the
// iteration order on first insertion.
func (r *Results) Set(key string, response any) {
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = response
}

// Get returns the response recorded for key.
func (r *Results) Get(key string) (any, bool) {
	v, ok := r.entries[key]
	return v, ok
}

// Keys returns the plugin keys in completion order.
func (r *Results) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len returns the number of recorded entries.
func (r *Results) Len() int {
	return len(r.entries)
}

// Rename moves the entry recorded under oldKey to newKey, preserving its
// position in the iteration order. It is a no-op if oldKey is absent.
func (r *Results) Rename(oldKey, newKey string) {
	v, ok := r.entries[oldKey]
	if !ok || oldKey == newKey {
		return
	}
	delete(r.entries, oldKey)
	r.entries[newKey] = v
	for i, k := range r.order {
		if k == oldKey {
			r.order[i] = newKey
			break
		}
	}
}
