package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Persister stores a statistics snapshot, typically the debrief database.
type Persister interface {
	StoreSystemStats(stats map[string]interface{}) error
}

// Stats tracks synchronization counters across the cycle and the transports.
type Stats struct {
	// Cycle counts
	CyclesRun           uint64
	SignalPresentCycles uint64

	// Transport counts
	BroadcastsSent   uint64
	UpdatesReceived  uint64
	MalformedRecords uint64
	DroppedInbound   uint64
	TransportErrors  uint64

	// Registry counts
	StationsEvicted uint64
	StationsRemoved uint64

	// Timing
	StartTime      time.Time
	LastUpdateTime time.Time
	ProcessingTime time.Duration

	persister Persister

	mu sync.RWMutex
}

// New creates a new Stats instance.
func New() *Stats {
	now := time.Now()
	return &Stats{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// SetPersister sets the store used by Persist.
func (s *Stats) SetPersister(p Persister) {
	s.mu.Lock()
	s.persister = p
	s.mu.Unlock()
}

// Persist stores the current statistics.
func (s *Stats) Persist() error {
	s.mu.RLock()
	p := s.persister
	s.mu.RUnlock()
	if p == nil {
		return fmt.Errorf("stats persister not set")
	}
	return p.StoreSystemStats(s.GetStats())
}

// IncrementCycles increments the completed cycle counter.
func (s *Stats) IncrementCycles() {
	atomic.AddUint64(&s.CyclesRun, 1)
}

// IncrementSignalPresent increments the cycles-with-signal counter.
func (s *Stats) IncrementSignalPresent() {
	atomic.AddUint64(&s.SignalPresentCycles, 1)
}

// IncrementBroadcasts increments the broadcasts-sent counter.
func (s *Stats) IncrementBroadcasts() {
	atomic.AddUint64(&s.BroadcastsSent, 1)
}

// IncrementUpdatesReceived increments the peer-updates counter.
func (s *Stats) IncrementUpdatesReceived() {
	atomic.AddUint64(&s.UpdatesReceived, 1)
}

// IncrementMalformedRecords counts a received record dropped by validation.
func (s *Stats) IncrementMalformedRecords() {
	atomic.AddUint64(&s.MalformedRecords, 1)
}

// IncrementDroppedInbound counts a record dropped on a full inbound queue.
func (s *Stats) IncrementDroppedInbound() {
	atomic.AddUint64(&s.DroppedInbound, 1)
}

// IncrementTransportErrors counts a send or receive failure on the medium.
func (s *Stats) IncrementTransportErrors() {
	atomic.AddUint64(&s.TransportErrors, 1)
}

// AddStationsEvicted adds to the staleness eviction counter.
func (s *Stats) AddStationsEvicted(n int) {
	if n > 0 {
		atomic.AddUint64(&s.StationsEvicted, uint64(n))
	}
}

// IncrementStationsRemoved counts an explicit peer removal.
func (s *Stats) IncrementStationsRemoved() {
	atomic.AddUint64(&s.StationsRemoved, 1)
}

// UpdateLastUpdateTime records the time of the last peer update.
func (s *Stats) UpdateLastUpdateTime() {
	s.mu.Lock()
	s.LastUpdateTime = time.Now()
	s.mu.Unlock()
}

// AddProcessingTime accumulates cycle processing time.
func (s *Stats) AddProcessingTime(d time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += d
	s.mu.Unlock()
}

// GetStats returns a snapshot of all statistics.
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	lastUpdate := s.LastUpdateTime
	processing := s.ProcessingTime
	start := s.StartTime
	s.mu.RUnlock()

	return map[string]interface{}{
		"cycles_run":            atomic.LoadUint64(&s.CyclesRun),
		"signal_present_cycles": atomic.LoadUint64(&s.SignalPresentCycles),
		"broadcasts_sent":       atomic.LoadUint64(&s.BroadcastsSent),
		"updates_received":      atomic.LoadUint64(&s.UpdatesReceived),
		"malformed_records":     atomic.LoadUint64(&s.MalformedRecords),
		"dropped_inbound":       atomic.LoadUint64(&s.DroppedInbound),
		"transport_errors":      atomic.LoadUint64(&s.TransportErrors),
		"stations_evicted":      atomic.LoadUint64(&s.StationsEvicted),
		"stations_removed":      atomic.LoadUint64(&s.StationsRemoved),
		"start_time":            start,
		"last_update_time":      lastUpdate,
		"processing_time":       processing,
	}
}

// StartPersistence periodically persists statistics until ctx is done.
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Persist(); err != nil {
				log.Printf("Warning: Failed to persist stats: %v", err)
			}
		}
	}
}

// StartLogging periodically logs a summary line until ctx is done.
func (s *Stats) StartLogging(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("stats: cycles=%d broadcasts=%d received=%d malformed=%d dropped=%d evicted=%d transport_errors=%d",
				atomic.LoadUint64(&s.CyclesRun),
				atomic.LoadUint64(&s.BroadcastsSent),
				atomic.LoadUint64(&s.UpdatesReceived),
				atomic.LoadUint64(&s.MalformedRecords),
				atomic.LoadUint64(&s.DroppedInbound),
				atomic.LoadUint64(&s.StationsEvicted),
				atomic.LoadUint64(&s.TransportErrors))
		}
	}
}
