// Package wire defines the compact record broadcast between peers and the
// validation applied to every record received from the medium.
package wire

import (
	"fmt"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/saviobatista/tacan-sync/internal/types"
)

// Record is one station update on the wire. msgpack with single-letter keys
// keeps it small enough for per-frame broadcast over a lossy datagram medium.
type Record struct {
	Owner   string  `msgpack:"o"`
	Channel uint8   `msgpack:"c"`
	Band    uint8   `msgpack:"b"`
	Active  bool    `msgpack:"a"`
	Lat     float64 `msgpack:"la"`
	Lon     float64 `msgpack:"lo"`
	AltFt   float64 `msgpack:"al"`
	Heading float64 `msgpack:"h"`
	Goodbye bool    `msgpack:"x"`
	SentAt  int64   `msgpack:"t"` // unix milliseconds
}

// FromStation builds the wire record for a station broadcast.
func FromStation(st types.Station) Record {
	return Record{
		Owner:   st.OwnerID,
		Channel: uint8(st.Channel),
		Band:    uint8(st.Band),
		Active:  st.Active,
		Lat:     st.Latitude,
		Lon:     st.Longitude,
		AltFt:   st.AltitudeFt,
		Heading: st.HeadingDeg,
		SentAt:  st.LastSeen.UnixMilli(),
	}
}

// Station converts a validated record into a registry station. received is
// the local receipt time and becomes LastSeen; the sender's clock is never
// trusted for staleness.
func (rec Record) Station(received time.Time) types.Station {
	return types.Station{
		OwnerID:    rec.Owner,
		Channel:    int(rec.Channel),
		Band:       types.Band(rec.Band),
		Active:     rec.Active,
		Latitude:   rec.Lat,
		Longitude:  rec.Lon,
		AltitudeFt: rec.AltFt,
		HeadingDeg: rec.Heading,
		LastSeen:   received,
	}
}

// Encode serializes the record.
func Encode(rec Record) ([]byte, error) {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// Decode deserializes and validates one received record. Any record that
// fails validation is malformed input: the caller drops it and counts it,
// and it never reaches the registry.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Validate checks the shape and ranges of a record.
func (rec Record) Validate() error {
	if rec.Owner == "" {
		return fmt.Errorf("record has empty owner")
	}
	if !types.ValidChannel(int(rec.Channel)) {
		return fmt.Errorf("channel %d out of range [%d,%d]", rec.Channel, types.MinChannel, types.MaxChannel)
	}
	if !types.Band(rec.Band).Valid() {
		return fmt.Errorf("unrecognized band %d", rec.Band)
	}
	if math.IsNaN(rec.Lat) || rec.Lat < -90 || rec.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", rec.Lat)
	}
	if math.IsNaN(rec.Lon) || rec.Lon < -180 || rec.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", rec.Lon)
	}
	if math.IsNaN(rec.Heading) || math.IsInf(rec.Heading, 0) {
		return fmt.Errorf("heading %v is not finite", rec.Heading)
	}
	if math.IsNaN(rec.AltFt) || math.IsInf(rec.AltFt, 0) {
		return fmt.Errorf("altitude %v is not finite", rec.AltFt)
	}
	return nil
}
