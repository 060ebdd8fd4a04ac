// Package db is the optional post-flight debrief store: which stations were
// heard when, and how the sync engine performed. Enabled by DATABASE_URL;
// the sync cycle never depends on it.
package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/saviobatista/tacan-sync/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// NewWithDB wraps an existing handle (useful for testing).
func NewWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// CreateSession records the start of a sync session for the local peer.
func (c *Client) CreateSession(sessionID, ownerID string, startedAt time.Time) error {
	query := `
		INSERT INTO sessions (session_id, owner_id, started_at)
		VALUES ($1, $2, $3)
	`
	_, err := c.db.Exec(query, sessionID, ownerID, startedAt)
	return err
}

// EndSession records the end of a sync session.
func (c *Client) EndSession(sessionID string, endedAt time.Time) error {
	query := `UPDATE sessions SET ended_at = $1 WHERE session_id = $2`
	_, err := c.db.Exec(query, endedAt, sessionID)
	return err
}

// StoreSighting records the first time a station key appeared in the
// registry during a session.
func (c *Client) StoreSighting(sessionID string, st types.Station) error {
	query := `
		INSERT INTO station_sightings (
			time, session_id, owner_id, channel, band, active,
			latitude, longitude, altitude_ft, heading_deg
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := c.db.Exec(query,
		st.LastSeen, sessionID, st.OwnerID, st.Channel, st.Band.String(),
		st.Active, st.Latitude, st.Longitude, st.AltitudeFt, st.HeadingDeg,
	)
	return err
}

// StoreSystemStats stores system statistics
func (c *Client) StoreSystemStats(stats map[string]interface{}) error {
	query := `
		INSERT INTO system_stats (
			time, cycles_run, signal_present_cycles, broadcasts_sent,
			updates_received, malformed_records, dropped_inbound,
			transport_errors, stations_evicted, stations_removed,
			processing_time_ms, uptime_seconds
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	processingTime := stats["processing_time"].(time.Duration).Milliseconds()
	uptime := time.Since(stats["start_time"].(time.Time)).Seconds()

	_, err := c.db.Exec(query,
		time.Now(),
		stats["cycles_run"],
		stats["signal_present_cycles"],
		stats["broadcasts_sent"],
		stats["updates_received"],
		stats["malformed_records"],
		stats["dropped_inbound"],
		stats["transport_errors"],
		stats["stations_evicted"],
		stats["stations_removed"],
		processingTime,
		uptime,
	)
	return err
}

// DB exposes the underlying handle for the migration runner.
func (c *Client) DB() *sql.DB {
	return c.db
}
