// Package resolver turns the tuned channel plus the station registry into
// one bearing/distance/presence reading.
package resolver

import (
	"github.com/saviobatista/tacan-sync/internal/geo"
	"github.com/saviobatista/tacan-sync/internal/registry"
	"github.com/saviobatista/tacan-sync/internal/types"
)

// Resolve computes the signal for the local receiver. It is a pure function
// of the tuning, the registry contents, and the local position; no state is
// carried between cycles. The caller evicts stale stations first.
//
// When several active stations share the tuned channel and band, the nearest
// one wins, mirroring the TACAN capture effect where the strongest signal
// dominates. Exact distance ties break by lowest owner ID so that repeated
// runs agree.
func Resolve(reg *registry.Registry, local types.SpatialSnapshot, tuning types.Tuning) types.ResolvedSignal {
	var (
		best     types.Station
		bestDist float64
		found    bool
	)

	for st := range reg.StationsOn(tuning.Channel, tuning.Band) {
		if !st.Active || st.OwnerID == local.OwnerID {
			continue
		}
		dist := geo.DistanceNM(local.Latitude, local.Longitude, st.Latitude, st.Longitude)
		if !found || dist < bestDist || (dist == bestDist && st.OwnerID < best.OwnerID) {
			best = st
			bestDist = dist
			found = true
		}
	}

	if !found {
		return types.ResolvedSignal{}
	}

	return types.ResolvedSignal{
		Present:    true,
		BearingDeg: geo.InitialBearing(local.Latitude, local.Longitude, best.Latitude, best.Longitude),
		DistanceNM: bestDist,
	}
}
