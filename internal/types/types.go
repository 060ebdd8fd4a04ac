package types

import (
	"fmt"
	"time"
)

// Channel range of the TACAN tuner.
const (
	MinChannel = 1
	MaxChannel = 126
)

// Band identifies the X or Y side of a TACAN channel.
type Band uint8

const (
	BandX Band = 0
	BandY Band = 1
)

// String returns the band letter used on cockpit displays.
func (b Band) String() string {
	if b == BandY {
		return "Y"
	}
	return "X"
}

// Valid reports whether the band is one of the two defined values.
func (b Band) Valid() bool {
	return b == BandX || b == BandY
}

// ValidChannel reports whether ch is a legal TACAN channel number.
func ValidChannel(ch int) bool {
	return ch >= MinChannel && ch <= MaxChannel
}

// Station represents one transmitter's advertised state, local or remote.
type Station struct {
	OwnerID    string    `json:"owner_id"`
	Channel    int       `json:"channel"`
	Band       Band      `json:"band"`
	Active     bool      `json:"active"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AltitudeFt float64   `json:"altitude_ft"`
	HeadingDeg float64   `json:"heading_deg"`
	LastSeen   time.Time `json:"last_seen"`
}

// Key returns the identity of the station. Two peers may legally occupy the
// same channel and band, so the owner is part of the key.
func (s Station) Key() StationKey {
	return StationKey{OwnerID: s.OwnerID, Channel: s.Channel, Band: s.Band}
}

// StationKey uniquely identifies a station across all peers.
type StationKey struct {
	OwnerID string
	Channel int
	Band    Band
}

func (k StationKey) String() string {
	return fmt.Sprintf("%s/%d%s", k.OwnerID, k.Channel, k.Band)
}

// Tuning is the local receiver's desired channel and band. It is read from
// the variable store every cycle and never persisted.
type Tuning struct {
	Channel int
	Band    Band
}

// ResolvedSignal is the output of one resolution cycle. BearingDeg and
// DistanceNM are zero when Present is false.
type ResolvedSignal struct {
	Present    bool
	BearingDeg float64
	DistanceNM float64
}

// SpatialSnapshot is a read-only capture of the local aircraft's state at the
// start of a cycle: position, heading, and the transmitter panel settings.
type SpatialSnapshot struct {
	OwnerID    string
	Latitude   float64
	Longitude  float64
	AltitudeFt float64
	HeadingDeg float64
	Channel    int
	Band       Band
	Transmit   bool
	CapturedAt time.Time
}

// Station builds the local station advertised to peers from the snapshot.
// Active mirrors the transmit flag so that deactivation propagates too.
func (sn SpatialSnapshot) Station() Station {
	return Station{
		OwnerID:    sn.OwnerID,
		Channel:    sn.Channel,
		Band:       sn.Band,
		Active:     sn.Transmit,
		Latitude:   sn.Latitude,
		Longitude:  sn.Longitude,
		AltitudeFt: sn.AltitudeFt,
		HeadingDeg: sn.HeadingDeg,
		LastSeen:   sn.CapturedAt,
	}
}
