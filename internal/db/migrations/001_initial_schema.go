package migrations

// InitialSchema creates the debrief schema: sessions, station sightings, and
// system stats.
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS station_sightings (
			time TIMESTAMPTZ NOT NULL,
			session_id TEXT NOT NULL REFERENCES sessions (session_id),
			owner_id TEXT NOT NULL,
			channel INTEGER NOT NULL,
			band TEXT NOT NULL,
			active BOOLEAN NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			altitude_ft DOUBLE PRECISION,
			heading_deg DOUBLE PRECISION
		);

		CREATE INDEX IF NOT EXISTS idx_station_sightings_session ON station_sightings (session_id);
		CREATE INDEX IF NOT EXISTS idx_station_sightings_owner ON station_sightings (owner_id);
		CREATE INDEX IF NOT EXISTS idx_station_sightings_tuning ON station_sightings (channel, band);

		CREATE TABLE IF NOT EXISTS system_stats (
			time TIMESTAMPTZ NOT NULL,
			cycles_run BIGINT,
			signal_present_cycles BIGINT,
			broadcasts_sent BIGINT,
			updates_received BIGINT,
			malformed_records BIGINT,
			dropped_inbound BIGINT,
			transport_errors BIGINT,
			stations_evicted BIGINT,
			stations_removed BIGINT,
			processing_time_ms BIGINT,
			uptime_seconds DOUBLE PRECISION
		);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS system_stats;
		DROP TABLE IF EXISTS station_sightings;
		DROP TABLE IF EXISTS sessions;
	`,
}
