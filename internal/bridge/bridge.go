// Package bridge drives the fixed-rate synchronization cycle and is the only
// component touching the simulation-variable boundary:
// read → broadcast → poll → evict → resolve → write.
package bridge

import (
	"context"
	"log"
	"time"

	"github.com/saviobatista/tacan-sync/internal/registry"
	"github.com/saviobatista/tacan-sync/internal/resolver"
	"github.com/saviobatista/tacan-sync/internal/simvar"
	"github.com/saviobatista/tacan-sync/internal/stats"
	"github.com/saviobatista/tacan-sync/internal/transport"
	"github.com/saviobatista/tacan-sync/internal/types"
)

// SightingStore records the first appearance of a station key, for the
// debrief database.
type SightingStore interface {
	StoreSighting(sessionID string, st types.Station) error
}

// Mirror publishes registry contents and the resolved signal for external
// diagnostic tooling.
type Mirror interface {
	StoreStation(ctx context.Context, st types.Station, ttl time.Duration) error
	StoreResolvedSignal(ctx context.Context, owner string, sig types.ResolvedSignal, ttl time.Duration) error
}

// Config wires a Bridge. Sightings and Mirror are optional.
type Config struct {
	Store     simvar.Store
	Transport transport.Transport
	Stats     *stats.Stats
	OwnerID   string
	SessionID string

	TickInterval time.Duration
	StaleTimeout time.Duration

	Sightings SightingStore
	Mirror    Mirror
}

// Bridge owns the registry and the cycle. All registry access happens on the
// goroutine calling Run (or RunCycle in tests); transports hand updates over
// through their inbound queues.
type Bridge struct {
	store     simvar.Store
	tr        transport.Transport
	reg       *registry.Registry
	stats     *stats.Stats
	ownerID   string
	sessionID string

	tick         time.Duration
	staleTimeout time.Duration

	sightings SightingStore
	mirror    Mirror
}

// New creates a Bridge with an empty registry.
func New(cfg Config) *Bridge {
	return &Bridge{
		store:        cfg.Store,
		tr:           cfg.Transport,
		reg:          registry.New(),
		stats:        cfg.Stats,
		ownerID:      cfg.OwnerID,
		sessionID:    cfg.SessionID,
		tick:         cfg.TickInterval,
		staleTimeout: cfg.StaleTimeout,
		sightings:    cfg.Sightings,
		mirror:       cfg.Mirror,
	}
}

// Registry exposes the station table for diagnostics.
func (b *Bridge) Registry() *registry.Registry {
	return b.reg
}

// Run drives the cycle at the configured rate until ctx is done, then sends
// a goodbye so peers can drop the local station without waiting for
// staleness.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.tr.Goodbye()
			return
		case <-ticker.C:
			b.RunCycle(time.Now())
		}
	}
}

// RunCycle runs one complete cycle. now is captured once and used for both
// the local station's LastSeen and the staleness sweep, so a station
// refreshed this cycle can never be evicted by it. A cycle always runs to
// completion; every failure inside it degrades to "no signal this cycle".
func (b *Bridge) RunCycle(now time.Time) types.ResolvedSignal {
	start := time.Now()

	snap := b.readSnapshot(now)

	// Broadcast whenever the panel holds a legal channel, active or not:
	// peers need the Active=false update to stop resolving us.
	if types.ValidChannel(snap.Channel) {
		local := snap.Station()
		if b.reg.Upsert(local) {
			b.logSighting(local)
		}
		b.tr.Broadcast(local)
	}

	for _, in := range b.tr.Poll() {
		if in.Remove {
			key := in.Station.Key()
			if b.reg.Remove(key.OwnerID, key.Channel, key.Band) {
				b.stats.IncrementStationsRemoved()
			}
			continue
		}
		b.stats.IncrementUpdatesReceived()
		b.stats.UpdateLastUpdateTime()
		if b.reg.Upsert(in.Station) {
			b.logSighting(in.Station)
		}
	}

	b.stats.AddStationsEvicted(b.reg.EvictStale(now, b.staleTimeout))

	tuning := types.Tuning{Channel: snap.Channel, Band: snap.Band}
	sig := resolver.Resolve(b.reg, snap, tuning)
	b.writeSignal(sig)
	if sig.Present {
		b.stats.IncrementSignalPresent()
	}

	b.mirrorState(sig)

	b.stats.IncrementCycles()
	b.stats.AddProcessingTime(time.Since(start))
	return sig
}

func (b *Bridge) readSnapshot(now time.Time) types.SpatialSnapshot {
	band := types.BandX
	if b.store.Get(simvar.VarBand) == 1 {
		band = types.BandY
	}
	return types.SpatialSnapshot{
		OwnerID:    b.ownerID,
		Latitude:   b.store.Get(simvar.VarLatitude),
		Longitude:  b.store.Get(simvar.VarLongitude),
		AltitudeFt: b.store.Get(simvar.VarAltitude),
		HeadingDeg: b.store.Get(simvar.VarHeading),
		Channel:    int(b.store.Get(simvar.VarChannel)),
		Band:       band,
		Transmit:   b.store.Get(simvar.VarActive) != 0,
		CapturedAt: now,
	}
}

func (b *Bridge) writeSignal(sig types.ResolvedSignal) {
	present := 0.0
	if sig.Present {
		present = 1.0
	}
	b.store.Set(simvar.VarSignalPresent, present)
	b.store.Set(simvar.VarNearestBearing, sig.BearingDeg)
	b.store.Set(simvar.VarNearestDistance, sig.DistanceNM)
}

func (b *Bridge) logSighting(st types.Station) {
	if b.sightings == nil {
		return
	}
	if err := b.sightings.StoreSighting(b.sessionID, st); err != nil {
		log.Printf("Warning: Failed to store sighting: %v", err)
	}
}

func (b *Bridge) mirrorState(sig types.ResolvedSignal) {
	if b.mirror == nil {
		return
	}
	ctx := context.Background()
	for _, st := range b.reg.All() {
		if err := b.mirror.StoreStation(ctx, st, b.staleTimeout); err != nil {
			log.Printf("Warning: Failed to mirror station: %v", err)
			return
		}
	}
	if err := b.mirror.StoreResolvedSignal(ctx, b.ownerID, sig, b.staleTimeout); err != nil {
		log.Printf("Warning: Failed to mirror resolved signal: %v", err)
	}
}
