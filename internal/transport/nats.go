package transport

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/types"
	"github.com/saviobatista/tacan-sync/internal/wire"
)

// NATS carries station records over a core NATS subject, one per multiplayer
// session. Core NATS (not JetStream) keeps the at-most-once, unordered,
// fire-and-forget semantics the sync engine expects from its medium. The
// broker delivers our own publishes back to us; receive drops those.
type NATS struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	subject    string
	localOwner string
	inbound    chan Inbound
	stats      *stats.Stats

	lastRecord *wire.Record
}

// SubjectForSession returns the broadcast subject for a session name.
func SubjectForSession(session string) string {
	return fmt.Sprintf("tacan.session.%s.state", session)
}

// NewNATS connects to the broker and subscribes to the session subject.
func NewNATS(url, session, localOwner string, st *stats.Stats) (*NATS, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := &NATS{
		conn:       nc,
		subject:    SubjectForSession(session),
		localOwner: localOwner,
		inbound:    make(chan Inbound, inboundQueueSize),
		stats:      st,
	}

	sub, err := nc.Subscribe(n.subject, func(msg *nats.Msg) {
		receive(msg.Data, localOwner, n.inbound, st)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.subject, err)
	}
	n.sub = sub
	return n, nil
}

// Broadcast publishes the station to the session subject, fire-and-forget.
func (n *NATS) Broadcast(st types.Station) {
	rec := wire.FromStation(st)
	n.lastRecord = &rec
	n.publish(rec)
}

// Goodbye tells the session to drop the last advertised station.
func (n *NATS) Goodbye() {
	if n.lastRecord == nil {
		return
	}
	rec := *n.lastRecord
	rec.Goodbye = true
	rec.Active = false
	n.publish(rec)
}

func (n *NATS) publish(rec wire.Record) {
	data, err := wire.Encode(rec)
	if err != nil {
		n.stats.IncrementTransportErrors()
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.stats.IncrementTransportErrors()
		return
	}
	n.stats.IncrementBroadcasts()
}

// Poll drains the records received since the last call.
func (n *NATS) Poll() []Inbound {
	return drain(n.inbound)
}

// Close unsubscribes and closes the connection.
func (n *NATS) Close() error {
	if n.sub != nil {
		if err := n.sub.Unsubscribe(); err != nil {
			n.stats.IncrementTransportErrors()
		}
	}
	n.conn.Close()
	return nil
}
