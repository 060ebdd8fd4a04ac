package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saviobatista/tacan-sync/internal/testutils"
	"github.com/saviobatista/tacan-sync/internal/types"
)

// fakeRedis implements RedisClientInterface against an in-memory map.
type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var deleted int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (f *fakeRedis) Close() error { return nil }

func TestStoreAndGetStation(t *testing.T) {
	fake := newFakeRedis()
	client := NewWithClient(fake)
	ctx := context.Background()

	st := testutils.MockStation("peer-a", 29, types.BandY, 32.1665, -110.8830)
	if err := client.StoreStation(ctx, st, 10*time.Second); err != nil {
		t.Fatalf("StoreStation() failed: %v", err)
	}

	if ttl := fake.ttls["station:peer-a:29:Y"]; ttl != 10*time.Second {
		t.Errorf("mirrored TTL = %v, want the staleness timeout 10s", ttl)
	}

	got, err := client.GetStation(ctx, st.Key())
	if err != nil {
		t.Fatalf("GetStation() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetStation() returned nil for a stored station")
	}
	if got.OwnerID != "peer-a" || got.Channel != 29 || got.Band != types.BandY {
		t.Errorf("GetStation() = %+v, want the stored station", got)
	}
}

func TestGetStationAbsent(t *testing.T) {
	client := NewWithClient(newFakeRedis())

	got, err := client.GetStation(context.Background(), types.StationKey{OwnerID: "ghost", Channel: 1, Band: types.BandX})
	if err != nil {
		t.Fatalf("GetStation() failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetStation() = %+v, want nil for an absent key", got)
	}
}

func TestDeleteStation(t *testing.T) {
	fake := newFakeRedis()
	client := NewWithClient(fake)
	ctx := context.Background()

	st := testutils.MockStation("peer-a", 29, types.BandX, 32, -110)
	if err := client.StoreStation(ctx, st, time.Second); err != nil {
		t.Fatalf("StoreStation() failed: %v", err)
	}
	if err := client.DeleteStation(ctx, st.Key()); err != nil {
		t.Fatalf("DeleteStation() failed: %v", err)
	}

	got, err := client.GetStation(ctx, st.Key())
	if err != nil {
		t.Fatalf("GetStation() failed: %v", err)
	}
	if got != nil {
		t.Errorf("station survived deletion: %+v", got)
	}
}

func TestStoreResolvedSignal(t *testing.T) {
	fake := newFakeRedis()
	client := NewWithClient(fake)

	sig := types.ResolvedSignal{Present: true, BearingDeg: 271.5, DistanceNM: 42.3}
	if err := client.StoreResolvedSignal(context.Background(), "viper-1", sig, 10*time.Second); err != nil {
		t.Fatalf("StoreResolvedSignal() failed: %v", err)
	}
	if _, ok := fake.data["signal:viper-1"]; !ok {
		t.Error("resolved signal was not stored under signal:<owner>")
	}
}
