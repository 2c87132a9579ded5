package organize

// IntentQueue is an insertion-ordered map of absolute destination path to
// the one pending Intent for that destination. Unlike
// the source cache, eviction from this queue means the intent must be
// executed, not silently dropped — the flush controller is responsible
// for that; IntentQueue itself is just the FIFO-evictable store.
type IntentQueue struct {
	m         *orderedMap[string, Intent]
	onAccount func(delta int)
}

// NewIntentQueue creates an empty IntentQueue.
func NewIntentQueue(onAccount func(delta int)) *IntentQueue {
	return &IntentQueue{m: newOrderedMap[string, Intent](), onAccount: onAccount}
}

// Get returns the queued intent for dest, if any.
func (q *IntentQueue) Get(dest string) (Intent, bool) {
	return q.m.Get(dest)
}

// Has reports whether dest has a queued intent.
func (q *IntentQueue) Has(dest string) bool {
	return q.m.Has(dest)
}

// Set inserts or replaces the queued intent for dest. At most one intent
// may be queued per destination path at any time: callers must Pop before
// Set when replacing, which this method does not enforce itself (the
// engine's emit loop always pops first; see engine.go).
func (q *IntentQueue) Set(dest string, intent Intent) {
	old, had := q.m.Get(dest)
	q.m.Set(dest, intent)

	if q.onAccount == nil {
		return
	}

	delta := intent.ApproxSize()
	if had {
		delta -= old.ApproxSize()
	}

	q.onAccount(delta)
}

// Pop removes and returns the queued intent for dest.
func (q *IntentQueue) Pop(dest string) (Intent, bool) {
	intent, ok := q.m.Pop(dest)
	if !ok {
		return nil, false
	}

	if q.onAccount != nil {
		q.onAccount(-intent.ApproxSize())
	}

	return intent, true
}

// PopOldest removes and returns the oldest (dest, Intent) entry.
func (q *IntentQueue) PopOldest() (string, Intent, bool) {
	dest, intent, ok := q.m.PopOldest()
	if !ok {
		return "", nil, false
	}

	if q.onAccount != nil {
		q.onAccount(-intent.ApproxSize())
	}

	return dest, intent, true
}

// Len returns the number of queued intents.
func (q *IntentQueue) Len() int {
	return q.m.Len()
}
