package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/saviobatista/tacan-sync/internal/types"
)

// MockStation creates an active station for testing, positioned at the given
// coordinates.
func MockStation(owner string, channel int, band types.Band, lat, lon float64) types.Station {
	return types.Station{
		OwnerID:    owner,
		Channel:    channel,
		Band:       band,
		Active:     true,
		Latitude:   lat,
		Longitude:  lon,
		AltitudeFt: 15000,
		HeadingDeg: 90,
		LastSeen:   time.Now().UTC(),
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
