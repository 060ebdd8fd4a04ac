// Package transport moves station updates between peers over an unordered,
// lossy, low-latency medium. It provides a UDP implementation for direct
// peer lists, a NATS implementation for brokered sessions, and an in-memory
// implementation for tests.
package transport

import (
	"time"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/types"
	"github.com/saviobatista/tacan-sync/internal/wire"
)

// Inbound is one validated peer update drained by Poll.
type Inbound struct {
	Station types.Station
	// Remove marks a goodbye record: the peer is leaving and its station
	// should be removed rather than upserted.
	Remove bool
}

// Transport abstracts peer-to-peer station update I/O. Broadcast is
// fire-and-forget: failure to reach a subset of peers is indistinguishable
// from normal loss and is never reported upward, only counted. Poll never
// blocks; it returns whatever has arrived since the last call.
type Transport interface {
	Broadcast(st types.Station)
	Goodbye()
	Poll() []Inbound
	Close() error
}

// inboundQueueSize bounds the single-producer/single-consumer queue between
// a transport's receive goroutine and the cycle goroutine.
const inboundQueueSize = 512

// enqueue appends without blocking the producer; on a full queue the record
// is dropped and counted, same as loss on the medium.
func enqueue(q chan Inbound, in Inbound, st *stats.Stats) {
	select {
	case q <- in:
	default:
		st.IncrementDroppedInbound()
	}
}

// drain empties the queue without waiting for more data.
func drain(q chan Inbound) []Inbound {
	var out []Inbound
	for {
		select {
		case in := <-q:
			out = append(out, in)
		default:
			return out
		}
	}
}

// receive decodes, validates, and queues one raw datagram. Malformed records
// are dropped and counted here; they never reach the registry. Records that
// loop back from the local peer are dropped silently.
func receive(data []byte, localOwner string, q chan Inbound, st *stats.Stats) {
	rec, err := wire.Decode(data)
	if err != nil {
		st.IncrementMalformedRecords()
		return
	}
	if rec.Owner == localOwner {
		return
	}
	enqueue(q, Inbound{Station: rec.Station(time.Now()), Remove: rec.Goodbye}, st)
}
