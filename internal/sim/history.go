package sim

// History is a fixed-capacity circular buffer of snapshots. When full, the
// oldest entry is evicted; callers needing long-term retention bookmark
// explicitly.
type History struct {
	buf  []Snapshot
	head int // next write position
	size int
}

// NewHistory allocates a ring with the given capacity (minimum 1).
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Snapshot, capacity)}
}

// Push appends a snapshot, evicting the oldest when full.
func (h *History) Push(s Snapshot) {
	h.buf[h.head] = s
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return h.size }

// Cap returns the ring capacity.
func (h *History) Cap() int { return len(h.buf) }

// At returns the i-th retained snapshot, 0 being the oldest.
func (h *History) At(i int) (Snapshot, bool) {
	if i < 0 || i >= h.size {
		return Snapshot{}, false
	}
	start := h.head - h.size
	if start < 0 {
		start += len(h.buf)
	}
	return h.buf[(start+i)%len(h.buf)], true
}

// Latest returns the most recent snapshot.
func (h *History) Latest() (Snapshot, bool) {
	return h.At(h.size - 1)
}
