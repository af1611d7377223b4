package app

import "sync"

// LeaderboardHub fans out "leaderboard changed" signals to subscribers.
// Signals coalesce: a slow subscriber sees at most one pending signal.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[chan struct{}]struct{})}
}

// Subscribe registers a subscriber. The channel starts with one pending signal
// so the subscriber can send an initial snapshot.
func (h *LeaderboardHub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Notify signals every subscriber without blocking.
func (h *LeaderboardHub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of active subscribers.
func (h *LeaderboardHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
