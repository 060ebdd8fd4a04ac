package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/saviobatista/tacan-sync/internal/testutils"
	"github.com/saviobatista/tacan-sync/internal/types"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return NewWithDB(mockDB), mock
}

func TestCreateSession(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	startedAt := time.Now()
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("session-1", "viper-1", startedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := client.CreateSession("session-1", "viper-1", startedAt); err != nil {
		t.Errorf("CreateSession() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEndSession(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	endedAt := time.Now()
	mock.ExpectExec("UPDATE sessions SET ended_at").
		WithArgs(endedAt, "session-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := client.EndSession("session-1", endedAt); err != nil {
		t.Errorf("EndSession() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreSighting(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	st := testutils.MockStation("peer-a", 29, types.BandY, 32.1665, -110.8830)
	mock.ExpectExec("INSERT INTO station_sightings").
		WithArgs(st.LastSeen, "session-1", "peer-a", 29, "Y", true,
			st.Latitude, st.Longitude, st.AltitudeFt, st.HeadingDeg).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := client.StoreSighting("session-1", st); err != nil {
		t.Errorf("StoreSighting() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreSystemStats(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	mock.ExpectExec("INSERT INTO system_stats").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats := map[string]interface{}{
		"cycles_run":            uint64(120),
		"signal_present_cycles": uint64(80),
		"broadcasts_sent":       uint64(120),
		"updates_received":      uint64(200),
		"malformed_records":     uint64(2),
		"dropped_inbound":       uint64(0),
		"transport_errors":      uint64(1),
		"stations_evicted":      uint64(3),
		"stations_removed":      uint64(1),
		"processing_time":       150 * time.Millisecond,
		"start_time":            time.Now().Add(-time.Minute),
		"last_update_time":      time.Now(),
	}
	if err := client.StoreSystemStats(stats); err != nil {
		t.Errorf("StoreSystemStats() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreSightingError(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	mock.ExpectExec("INSERT INTO station_sightings").
		WillReturnError(sqlmock.ErrCancelled)

	st := testutils.MockStation("peer-a", 29, types.BandX, 32, -110)
	if err := client.StoreSighting("session-1", st); err == nil {
		t.Error("StoreSighting() should propagate query errors")
	}
}
