// Package simvar is the only boundary to the host simulator's variable
// store: named scalar values read and written by cockpit systems.
package simvar

import "sync"

// Variable names read each cycle.
const (
	VarChannel   = "T38_UFCP_AAT_CHAN"
	VarBand      = "T38_UFCP_AAT_BAND" // 0=X, 1=Y
	VarActive    = "T38_UFCP_AAT_ACTIVE"
	VarLatitude  = "PLANE_LATITUDE"
	VarLongitude = "PLANE_LONGITUDE"
	VarAltitude  = "PLANE_ALTITUDE"
	VarHeading   = "PLANE_HEADING_DEGREES_TRUE"
)

// Variable names written each cycle for cockpit display consumption.
const (
	VarNearestDistance = "T38_NRST_TCN_DIS"
	VarNearestBearing  = "T38_NRST_TCN_BRG"
	VarSignalPresent   = "T38_NRST_TCN_AVBL"
)

// Store reads and writes named simulation variables. Reads of variables that
// were never written return 0, matching the host simulator's L-var
// semantics; no operation fails.
type Store interface {
	Get(name string) float64
	Set(name string, value float64)
}

// MemStore is a mutex-guarded in-memory Store. It backs the gateway and the
// tests; the gateway goroutine and the cycle goroutine share it.
type MemStore struct {
	mu   sync.RWMutex
	vars map[string]float64
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{vars: make(map[string]float64)}
}

// Get returns the variable's value, or 0 if it was never set.
func (s *MemStore) Get(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vars[name]
}

// Set stores the variable's value.
func (s *MemStore) Set(name string, value float64) {
	s.mu.Lock()
	s.vars[name] = value
	s.mu.Unlock()
}

// Snapshot returns a copy of all variables, for the gateway's push path.
func (s *MemStore) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.vars))
	for name, value := range s.vars {
		out[name] = value
	}
	return out
}
