package transport

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/testutils"
	"github.com/saviobatista/tacan-sync/internal/types"
	"github.com/saviobatista/tacan-sync/internal/wire"
)

func TestUDPBroadcastAndPoll(t *testing.T) {
	statsRecv := stats.New()
	recv, err := NewUDP("127.0.0.1:0", nil, "peer-b", statsRecv)
	if err != nil {
		t.Fatalf("NewUDP() receiver failed: %v", err)
	}
	defer recv.Close()

	send, err := NewUDP("127.0.0.1:0", []string{recv.LocalAddr().String()}, "peer-a", stats.New())
	if err != nil {
		t.Fatalf("NewUDP() sender failed: %v", err)
	}
	defer send.Close()

	send.Broadcast(testutils.MockStation("peer-a", 29, types.BandX, 32.1665, -110.8830))

	var got []Inbound
	err = testutils.WaitForCondition(func() bool {
		got = append(got, recv.Poll()...)
		return len(got) >= 1
	}, 2*time.Second)
	if err != nil {
		t.Fatalf("no record arrived over loopback UDP: %v", err)
	}

	if got[0].Station.OwnerID != "peer-a" || got[0].Station.Channel != 29 {
		t.Errorf("received %+v, want peer-a's channel 29 station", got[0])
	}
	if got[0].Remove {
		t.Error("plain broadcast arrived flagged as a removal")
	}
}

func TestUDPDropsMalformedDatagrams(t *testing.T) {
	statsRecv := stats.New()
	recv, err := NewUDP("127.0.0.1:0", nil, "peer-b", statsRecv)
	if err != nil {
		t.Fatalf("NewUDP() receiver failed: %v", err)
	}
	defer recv.Close()

	// Encode does not validate; the receive path must. Write the raw
	// datagram straight at the receiver's socket.
	send, err := net.DialUDP("udp", nil, recv.conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP() failed: %v", err)
	}
	defer send.Close()

	data, err := wire.Encode(wire.Record{Owner: "peer-a", Channel: 200, Band: 0, Lat: 32, Lon: -110})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if _, err := send.Write(data); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	err = testutils.WaitForCondition(func() bool {
		return atomic.LoadUint64(&statsRecv.MalformedRecords) == 1
	}, 2*time.Second)
	if err != nil {
		t.Fatalf("malformed datagram was not counted: %v", err)
	}
	if got := recv.Poll(); len(got) != 0 {
		t.Errorf("malformed datagram reached Poll(): %+v", got)
	}
}

func TestUDPGoodbye(t *testing.T) {
	recv, err := NewUDP("127.0.0.1:0", nil, "peer-b", stats.New())
	if err != nil {
		t.Fatalf("NewUDP() receiver failed: %v", err)
	}
	defer recv.Close()

	send, err := NewUDP("127.0.0.1:0", []string{recv.LocalAddr().String()}, "peer-a", stats.New())
	if err != nil {
		t.Fatalf("NewUDP() sender failed: %v", err)
	}
	defer send.Close()

	send.Broadcast(testutils.MockStation("peer-a", 29, types.BandX, 32, -110))
	send.Goodbye()

	var got []Inbound
	err = testutils.WaitForCondition(func() bool {
		got = append(got, recv.Poll()...)
		return len(got) >= 2
	}, 2*time.Second)
	if err != nil {
		t.Fatalf("records did not arrive: %v", err)
	}

	last := got[len(got)-1]
	if !last.Remove {
		t.Errorf("last record should be the goodbye, got %+v", last)
	}
}
