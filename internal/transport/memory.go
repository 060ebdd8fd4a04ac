package transport

import (
	"sync"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/types"
	"github.com/saviobatista/tacan-sync/internal/wire"
)

// Hub is an in-process medium connecting Memory transports, used by tests
// and by peersim demos. Delivery goes through the same encode/validate path
// as the network transports, so malformed input handling is exercised too.
type Hub struct {
	mu      sync.Mutex
	members []*Memory
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Join attaches a new transport for the given owner.
func (h *Hub) Join(owner string, st *stats.Stats) *Memory {
	m := &Memory{
		hub:        h,
		localOwner: owner,
		inbound:    make(chan Inbound, inboundQueueSize),
		stats:      st,
	}
	h.mu.Lock()
	h.members = append(h.members, m)
	h.mu.Unlock()
	return m
}

// Inject delivers a raw datagram to every member, as if it arrived from the
// medium. Tests use it to feed malformed records through validation.
func (h *Hub) Inject(data []byte) {
	h.deliver(data, nil)
}

func (h *Hub) deliver(data []byte, from *Memory) {
	h.mu.Lock()
	members := make([]*Memory, len(h.members))
	copy(members, h.members)
	h.mu.Unlock()

	for _, m := range members {
		if m == from || m.closed() {
			continue
		}
		receive(data, m.localOwner, m.inbound, m.stats)
	}
}

func (h *Hub) leave(m *Memory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, member := range h.members {
		if member == m {
			h.members = append(h.members[:i], h.members[i+1:]...)
			return
		}
	}
}

// Memory is the in-process Transport implementation.
type Memory struct {
	hub        *Hub
	localOwner string
	inbound    chan Inbound
	stats      *stats.Stats

	mu       sync.Mutex
	isClosed bool

	lastRecord *wire.Record
}

// Broadcast delivers the station to every other member of the hub.
func (m *Memory) Broadcast(st types.Station) {
	rec := wire.FromStation(st)
	m.lastRecord = &rec
	m.send(rec)
}

// Goodbye delivers a leave notice for the last advertised station.
func (m *Memory) Goodbye() {
	if m.lastRecord == nil {
		return
	}
	rec := *m.lastRecord
	rec.Goodbye = true
	rec.Active = false
	m.send(rec)
}

func (m *Memory) send(rec wire.Record) {
	data, err := wire.Encode(rec)
	if err != nil {
		m.stats.IncrementTransportErrors()
		return
	}
	m.hub.deliver(data, m)
	m.stats.IncrementBroadcasts()
}

// Poll drains the records received since the last call.
func (m *Memory) Poll() []Inbound {
	return drain(m.inbound)
}

// Close detaches the transport from the hub.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.isClosed = true
	m.mu.Unlock()
	m.hub.leave(m)
	return nil
}

func (m *Memory) closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isClosed
}
