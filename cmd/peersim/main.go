// peersim is a synthetic peer for testing and demos: it flies a fixed-radius
// orbit around a point while transmitting on a channel, so a real client can
// verify its bearing and distance readouts against a known track.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/tacan-sync/internal/geo"
	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/transport"
	"github.com/saviobatista/tacan-sync/internal/types"
)

func main() {
	var (
		owner    = flag.String("owner", "", "Owner ID (default: random)")
		channel  = flag.Int("channel", 29, "TACAN channel to transmit on")
		bandFlag = flag.String("band", "X", "TACAN band (X or Y)")
		lat      = flag.Float64("lat", 32.1665, "Orbit center latitude")
		lon      = flag.Float64("lon", -110.8830, "Orbit center longitude")
		radius   = flag.Float64("radius", 0.2, "Orbit radius in degrees")
		period   = flag.Duration("period", 5*time.Minute, "Orbit period")
		tick     = flag.Duration("tick", 250*time.Millisecond, "Broadcast interval")
		bind     = flag.String("bind", ":0", "Local UDP bind address")
		peers    = flag.String("peers", "127.0.0.1:4590", "Comma-separated peer addresses")
	)
	flag.Parse()

	ownerID := *owner
	if ownerID == "" {
		ownerID = uuid.NewString()
	}
	band := types.BandX
	if *bandFlag == "Y" || *bandFlag == "y" {
		band = types.BandY
	}
	if !types.ValidChannel(*channel) {
		log.Printf("Channel %d out of range [%d,%d]", *channel, types.MinChannel, types.MaxChannel)
		os.Exit(1)
	}

	st := stats.New()
	tr, err := transport.NewUDP(*bind, splitPeers(*peers), ownerID, st)
	if err != nil {
		log.Printf("Failed to create transport: %v", err)
		os.Exit(1)
	}
	defer tr.Close()

	log.Printf("peersim %s transmitting on %d%s, orbiting %.4f,%.4f", ownerID, *channel, band, *lat, *lon)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-sigChan:
			log.Println("Shutting down...")
			tr.Goodbye()
			time.Sleep(100 * time.Millisecond)
			return
		case now := <-ticker.C:
			tr.Broadcast(stationAt(ownerID, *channel, band, *lat, *lon, *radius, now.Sub(start), *period, now))
		}
	}
}

// stationAt places the peer on its orbit at elapsed time t.
func stationAt(owner string, channel int, band types.Band, centerLat, centerLon, radius float64, t, period time.Duration, now time.Time) types.Station {
	angle := 2 * math.Pi * float64(t%period) / float64(period)
	return types.Station{
		OwnerID:    owner,
		Channel:    channel,
		Band:       band,
		Active:     true,
		Latitude:   centerLat + radius*math.Sin(angle),
		Longitude:  centerLon + radius*math.Cos(angle),
		AltitudeFt: 20000,
		HeadingDeg: geo.NormalizeHeading(angle*180/math.Pi + 90),
		LastSeen:   now,
	}
}

func splitPeers(csv string) []string {
	var out []string
	for _, peer := range strings.Split(csv, ",") {
		peer = strings.TrimSpace(peer)
		if peer != "" {
			out = append(out, peer)
		}
	}
	return out
}
