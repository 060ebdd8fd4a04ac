package transport

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/testutils"
	"github.com/saviobatista/tacan-sync/internal/types"
)

func startNATS(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2.9-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server is ready"),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start NATS container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get NATS connection string: %v", err)
	}

	return url, func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate NATS container: %v", err)
		}
	}
}

func TestNATS_Integration_BroadcastAndPoll(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	url, cleanup := startNATS(t)
	defer cleanup()

	statsA, statsB := stats.New(), stats.New()
	trA, err := NewNATS(url, "itest", "peer-a", statsA)
	if err != nil {
		t.Fatalf("NewNATS() for peer-a failed: %v", err)
	}
	defer trA.Close()

	trB, err := NewNATS(url, "itest", "peer-b", statsB)
	if err != nil {
		t.Fatalf("NewNATS() for peer-b failed: %v", err)
	}
	defer trB.Close()

	trA.Broadcast(testutils.MockStation("peer-a", 29, types.BandX, 32.1665, -110.8830))

	var got []Inbound
	err = testutils.WaitForCondition(func() bool {
		got = append(got, trB.Poll()...)
		return len(got) >= 1
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("no record arrived over NATS: %v", err)
	}

	if got[0].Station.OwnerID != "peer-a" || got[0].Station.Channel != 29 {
		t.Errorf("received %+v, want peer-a's channel 29 station", got[0])
	}

	// The broker delivers our own publishes back; the transport must have
	// dropped them.
	if own := trA.Poll(); len(own) != 0 {
		t.Errorf("peer-a received its own broadcast: %+v", own)
	}
}

func TestNATS_Integration_SessionIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	url, cleanup := startNATS(t)
	defer cleanup()

	trA, err := NewNATS(url, "session-one", "peer-a", stats.New())
	if err != nil {
		t.Fatalf("NewNATS() for peer-a failed: %v", err)
	}
	defer trA.Close()

	trB, err := NewNATS(url, "session-two", "peer-b", stats.New())
	if err != nil {
		t.Fatalf("NewNATS() for peer-b failed: %v", err)
	}
	defer trB.Close()

	trA.Broadcast(testutils.MockStation("peer-a", 29, types.BandX, 32, -110))

	time.Sleep(500 * time.Millisecond)
	if got := trB.Poll(); len(got) != 0 {
		t.Errorf("record crossed session subjects: %+v", got)
	}
}
