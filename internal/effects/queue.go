package effects

import "slices"

// DeferredQueue holds soft-stopped handles bucketed by the tick at which they
// must be hard-stopped. A handle lives in at most one bucket.
type DeferredQueue struct {
	buckets map[uint64][]Handle
	at      map[Handle]uint64
}

func NewDeferredQueue() *DeferredQueue {
	return &DeferredQueue{
		buckets: make(map[uint64][]Handle),
		at:      make(map[Handle]uint64),
	}
}

// Schedule queues h for a hard stop at tick. Scheduling a handle that is
// already queued moves it to the new bucket.
func (q *DeferredQueue) Schedule(h Handle, tick uint64) {
	if prev, ok := q.at[h]; ok {
		if prev == tick {
			return
		}
		q.remove(h, prev)
	}
	q.buckets[tick] = append(q.buckets[tick], h)
	q.at[h] = tick
}

// PopDue removes and returns every handle scheduled at or before tick,
// earliest bucket first. Emptied buckets are dropped.
func (q *DeferredQueue) PopDue(tick uint64) []Handle {
	var due []uint64
	for t := range q.buckets {
		if t <= tick {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	slices.Sort(due)

	var out []Handle
	for _, t := range due {
		for _, h := range q.buckets[t] {
			delete(q.at, h)
			out = append(out, h)
		}
		delete(q.buckets, t)
	}
	return out
}

// Drain empties the queue regardless of schedule.
func (q *DeferredQueue) Drain() []Handle {
	out := make([]Handle, 0, len(q.at))
	for _, t := range q.ticks() {
		out = append(out, q.buckets[t]...)
	}
	q.buckets = make(map[uint64][]Handle)
	q.at = make(map[Handle]uint64)
	return out
}

// ScheduledAt reports the hard-stop tick of h.
func (q *DeferredQueue) ScheduledAt(h Handle) (uint64, bool) {
	t, ok := q.at[h]
	return t, ok
}

func (q *DeferredQueue) Len() int     { return len(q.at) }
func (q *DeferredQueue) Buckets() int { return len(q.buckets) }

func (q *DeferredQueue) remove(h Handle, tick uint64) {
	bucket := q.buckets[tick]
	for i, other := range bucket {
		if other == h {
			bucket = slices.Delete(bucket, i, i+1)
			break
		}
	}
	if len(bucket) == 0 {
		delete(q.buckets, tick)
	} else {
		q.buckets[tick] = bucket
	}
	delete(q.at, h)
}

func (q *DeferredQueue) ticks() []uint64 {
	ts := make([]uint64, 0, len(q.buckets))
	for t := range q.buckets {
		ts = append(ts, t)
	}
	slices.Sort(ts)
	return ts
}
