package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/types"
	"github.com/saviobatista/tacan-sync/internal/wire"
)

// UDP broadcasts station records as datagrams to a static peer list. No
// acknowledgment, no retransmission, no ordering: staleness eviction and the
// next cycle's broadcast absorb whatever the medium loses.
type UDP struct {
	conn       *net.UDPConn
	peers      []*net.UDPAddr
	localOwner string
	inbound    chan Inbound
	stats      *stats.Stats
	stopChan   chan struct{}
	wg         sync.WaitGroup

	// lastRecord remembers the most recent broadcast so Goodbye can carry
	// the station's last-used key. Only the cycle goroutine touches it.
	lastRecord *wire.Record
}

// NewUDP binds the local socket and resolves the peer list.
func NewUDP(bind string, peers []string, localOwner string, st *stats.Stats) (*UDP, error) {
	laddr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bind address %q: %w", bind, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP socket: %w", err)
	}

	addrs := make([]*net.UDPAddr, 0, len(peers))
	for _, peer := range peers {
		addr, err := net.ResolveUDPAddr("udp", peer)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to resolve peer address %q: %w", peer, err)
		}
		addrs = append(addrs, addr)
	}

	u := &UDP{
		conn:       conn,
		peers:      addrs,
		localOwner: localOwner,
		inbound:    make(chan Inbound, inboundQueueSize),
		stats:      st,
		stopChan:   make(chan struct{}),
	}
	u.wg.Add(1)
	go u.readLoop()
	return u, nil
}

// LocalAddr returns the bound socket address.
func (u *UDP) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// Broadcast sends the station to every peer, fire-and-forget.
func (u *UDP) Broadcast(st types.Station) {
	rec := wire.FromStation(st)
	u.lastRecord = &rec
	u.send(rec)
}

// Goodbye tells peers to drop the last advertised station. Best-effort; if
// the datagram is lost, staleness eviction cleans up on the far side.
func (u *UDP) Goodbye() {
	if u.lastRecord == nil {
		return
	}
	rec := *u.lastRecord
	rec.Goodbye = true
	rec.Active = false
	u.send(rec)
}

func (u *UDP) send(rec wire.Record) {
	data, err := wire.Encode(rec)
	if err != nil {
		u.stats.IncrementTransportErrors()
		return
	}
	for _, peer := range u.peers {
		if _, err := u.conn.WriteToUDP(data, peer); err != nil {
			u.stats.IncrementTransportErrors()
		}
	}
	u.stats.IncrementBroadcasts()
}

// Poll drains the records received since the last call.
func (u *UDP) Poll() []Inbound {
	return drain(u.inbound)
}

// Close stops the reader and closes the socket.
func (u *UDP) Close() error {
	close(u.stopChan)
	err := u.conn.Close()
	u.wg.Wait()
	return err
}

func (u *UDP) readLoop() {
	defer u.wg.Done()

	buf := make([]byte, 1024)
	for {
		n, _, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-u.stopChan:
				return
			default:
			}
			u.stats.IncrementTransportErrors()
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		receive(data, u.localOwner, u.inbound, u.stats)
	}
}
