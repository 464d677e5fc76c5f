package qamp

import (
	"log"
	"sync"
	"time"
)

// BroadcastGroup handles pub/sub of comparison results
type BroadcastGroup struct {
	ID       string
	mu       sync.Mutex
	channels []chan Result
	TTL      time.Duration
	LastUsed time.Time
}

// Result wraps one comparison outcome with delivery metadata
type Result struct {
	Comparison *Comparison
	Error      error
	CreatedAt  time.Time
	TTL        time.Duration
}

// ResultSpace handles result storage and messaging
type ResultSpace struct {
	mu      sync.RWMutex
	values  map[string]Result
	waiting map[string][]chan Result
	groups  map[string]*BroadcastGroup
	done    chan struct{}
	wg      sync.WaitGroup
}

func newResultSpace() *ResultSpace {
	rs := &ResultSpace{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		groups:  make(map[string]*BroadcastGroup),
		done:    make(chan struct{}),
	}

	// Start cleanup goroutine
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanup()
	}()

	return rs
}

// Store stores a result under its job ID and wakes any waiters
func (rs *ResultSpace) Store(id string, cmp *Comparison, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	result := Result{
		Comparison: cmp,
		Error:      err,
		CreatedAt:  time.Now(),
		TTL:        ttl,
	}
	rs.values[id] = result

	if channels, ok := rs.waiting[id]; ok {
		for i, ch := range channels {
			select {
			case ch <- result:
				close(ch)
			default:
				log.Printf("Failed to send result to channel %d for job %s (channel full or closed)", i, id)
			}
		}
		delete(rs.waiting, id)
	}
}

// Await returns a channel that will receive the result when it's available
func (rs *ResultSpace) Await(id string) chan Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Result, 1)

	// Check if the result already exists
	if result, ok := rs.values[id]; ok {
		ch <- result
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

func (rs *ResultSpace) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ticker.C:
			rs.mu.Lock()
			rs.cleanupExpiredValues()
			rs.cleanupExpiredGroups()
			rs.mu.Unlock()
		}
	}
}

func (rs *ResultSpace) cleanupExpiredValues() {
	now := time.Now()
	for id, result := range rs.values {
		if result.TTL > 0 && now.Sub(result.CreatedAt) > result.TTL {
			delete(rs.values, id)
		}
	}
}

func (rs *ResultSpace) cleanupExpiredGroups() {
	now := time.Now()
	for id, group := range rs.groups {
		group.mu.Lock()
		expired := group.TTL > 0 && now.Sub(group.LastUsed) > group.TTL
		if expired {
			for _, ch := range group.channels {
				close(ch)
			}
		}
		group.mu.Unlock()
		if expired {
			delete(rs.groups, id)
		}
	}
}

func (rs *ResultSpace) CreateBroadcastGroup(id string, ttl time.Duration) *BroadcastGroup {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	group := &BroadcastGroup{
		ID:       id,
		channels: make([]chan Result, 0),
		TTL:      ttl,
		LastUsed: time.Now(),
	}
	rs.groups[id] = group
	return group
}

func (bg *BroadcastGroup) Send(result Result) {
	bg.mu.Lock()
	defer bg.mu.Unlock()

	bg.LastUsed = time.Now()
	for _, ch := range bg.channels {
		ch <- result
	}
}

func (rs *ResultSpace) Subscribe(groupID string) chan Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Result, 10)
	if group, ok := rs.groups[groupID]; ok {
		group.mu.Lock()
		group.channels = append(group.channels, ch)
		group.mu.Unlock()
	}
	return ch
}

func (rs *ResultSpace) Close() {
	close(rs.done)
	rs.wg.Wait()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	now := time.Now()
	for id, result := range rs.values {
		if result.TTL > 0 && now.Sub(result.CreatedAt) > result.TTL {
			delete(rs.values, id)
		}
	}
}
