// Package registry holds the table of known transmitting stations, local and
// remote, keyed by (owner, channel, band).
package registry

import (
	"iter"
	"time"

	"github.com/saviobatista/tacan-sync/internal/types"
)

// Registry owns all known stations. It is not safe for concurrent use: the
// resolution cycle goroutine is its only owner, and transports hand updates
// to that goroutine through their inbound queues.
type Registry struct {
	stations map[types.StationKey]types.Station

	// byTuning is a secondary index from (channel, band) to the owners
	// currently transmitting on it, maintained on every insert and removal.
	byTuning map[types.Tuning]map[string]struct{}
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		stations: make(map[types.StationKey]types.Station),
		byTuning: make(map[types.Tuning]map[string]struct{}),
	}
}

// Upsert inserts or replaces the station at its (owner, channel, band) key
// and returns true when the key was not previously present. A later update
// for the same key replaces the earlier one, never appends.
func (r *Registry) Upsert(st types.Station) bool {
	key := st.Key()
	_, existed := r.stations[key]
	r.stations[key] = st
	if !existed {
		tuning := types.Tuning{Channel: st.Channel, Band: st.Band}
		owners, ok := r.byTuning[tuning]
		if !ok {
			owners = make(map[string]struct{})
			r.byTuning[tuning] = owners
		}
		owners[st.OwnerID] = struct{}{}
	}
	return !existed
}

// Remove deletes the station at the given key, if present. Used when a peer
// signals that it is leaving the session.
func (r *Registry) Remove(owner string, channel int, band types.Band) bool {
	key := types.StationKey{OwnerID: owner, Channel: channel, Band: band}
	if _, ok := r.stations[key]; !ok {
		return false
	}
	delete(r.stations, key)
	r.unindex(key)
	return true
}

// EvictStale removes every station whose last update is older than timeout
// relative to now, and returns how many were removed. The caller captures
// now once per cycle, so a station upserted in the same cycle carries a
// LastSeen of now and survives that cycle's sweep.
func (r *Registry) EvictStale(now time.Time, timeout time.Duration) int {
	evicted := 0
	for key, st := range r.stations {
		if now.Sub(st.LastSeen) > timeout {
			delete(r.stations, key)
			r.unindex(key)
			evicted++
		}
	}
	return evicted
}

// StationsOn returns a lazy, restartable sequence of the stations currently
// indexed under (channel, band). Iteration order is unspecified.
func (r *Registry) StationsOn(channel int, band types.Band) iter.Seq[types.Station] {
	tuning := types.Tuning{Channel: channel, Band: band}
	return func(yield func(types.Station) bool) {
		for owner := range r.byTuning[tuning] {
			key := types.StationKey{OwnerID: owner, Channel: channel, Band: band}
			st, ok := r.stations[key]
			if !ok {
				continue
			}
			if !yield(st) {
				return
			}
		}
	}
}

// All returns every station in the registry, for diagnostics and mirroring.
func (r *Registry) All() []types.Station {
	out := make([]types.Station, 0, len(r.stations))
	for _, st := range r.stations {
		out = append(out, st)
	}
	return out
}

// Len returns the number of stations currently held.
func (r *Registry) Len() int {
	return len(r.stations)
}

func (r *Registry) unindex(key types.StationKey) {
	tuning := types.Tuning{Channel: key.Channel, Band: key.Band}
	if owners, ok := r.byTuning[tuning]; ok {
		delete(owners, key.OwnerID)
		if len(owners) == 0 {
			delete(r.byTuning, tuning)
		}
	}
}
