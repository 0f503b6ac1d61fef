package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/statewise/internal/config"
	"github.com/i474232898/statewise/internal/snapshot"
	"github.com/i474232898/statewise/internal/states"
	"github.com/i474232898/statewise/internal/weather"
)

const weatherJSON = `{"weather":[{"main":"Rain","description":"light rain"}],"main":{"temp":12.5},"name":"Washington"}`

func sampleSnapshot(t *testing.T, state string) snapshot.Snapshot {
	t.Helper()

	rec, err := weather.NewRecord([]byte(weatherJSON))
	require.NoError(t, err)

	var acts []snapshot.Activity
	require.NoError(t, json.Unmarshal([]byte(`[{"fullName":"Olympic National Park","parkCode":"olym","states":"WA"}]`), &acts))

	return snapshot.Snapshot{State: state, Weather: rec, Activities: acts}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s snapshot.Store) {
	ctx := context.Background()

	first, err := s.Create(ctx, sampleSnapshot(t, "Washington"))
	require.NoError(t, err)
	assert.Positive(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.Create(ctx, snapshot.Snapshot{State: "Texas"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	third, err := s.Create(ctx, sampleSnapshot(t, "washington"))
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Washington", got.State)
	assert.Nil(t, got.UserNote)
	require.NotNil(t, got.Weather)
	assert.JSONEq(t, weatherJSON, string(got.Weather.Raw()))
	require.Len(t, got.Activities, 1)
	assert.Equal(t, "Olympic National Park", got.Activities[0].FullName)

	out, err := json.Marshal(got.Activities)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"fullName":"Olympic National Park","parkCode":"olym","states":"WA"}]`, string(out))

	noWeather, err := s.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, noWeather.Weather)
	assert.NotNil(t, noWeather.Activities)
	assert.Empty(t, noWeather.Activities)

	_, err = s.Get(ctx, 9999)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	list, err := s.ListByState(ctx, "WASHINGTON", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	all, err := s.ListByState(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	none, err := s.ListByState(ctx, "Ohio", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestMemoryStoreRetention(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	var ids []int64
	for i := 0; i < 3; i++ {
		snap, err := s.Create(ctx, snapshot.Snapshot{State: "Utah"})
		require.NoError(t, err)
		ids = append(ids, snap.ID)
	}
	_, err := s.Create(ctx, snapshot.Snapshot{State: "Idaho"})
	require.NoError(t, err)

	_, err = s.Get(ctx, ids[0])
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	list, err := s.ListByState(ctx, "utah", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
}

func TestMemoryStoreCopiesActivities(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	acts := []snapshot.Activity{{FullName: "Zion National Park"}}
	saved, err := s.Create(ctx, snapshot.Snapshot{State: "Utah", Activities: acts})
	require.NoError(t, err)

	acts[0].FullName = "changed"
	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zion National Park", got.Activities[0].FullName)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQL(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

type staticWeather struct{ rec *weather.Record }

func (w staticWeather) FetchWeather(context.Context, string) (*weather.Record, error) {
	return w.rec, nil
}

type staticActivities struct{}

func (staticActivities) FetchActivities(context.Context, states.Code) ([]snapshot.Activity, error) {
	return []snapshot.Activity{{FullName: "Yosemite National Park"}}, nil
}

func TestSQLiteSnapshotSavedAfterCallerCancels(t *testing.T) {
	s, err := OpenSQL(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer s.Close()

	rec, err := weather.NewRecord([]byte(weatherJSON))
	require.NoError(t, err)
	cfg := &config.AppConfig{OpenWeatherAPIKey: "ow", NPSAPIKey: "nps"}
	svc := snapshot.NewService(cfg, staticWeather{rec: rec}, staticActivities{}, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.BuildSnapshot(ctx, "California")
	require.NoError(t, err)

	list, err := s.ListByState(context.Background(), "California", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.SavedID, list[0].ID)
	assert.Len(t, list[0].Activities, 1)
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "statewise.db")

	s, err := OpenSQL(ctx, "sqlite", dbPath)
	require.NoError(t, err)
	saved, err := s.Create(ctx, sampleSnapshot(t, "Oregon"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	// Reopening must not drop existing rows.
	s, err = OpenSQL(ctx, "sqlite", dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oregon", got.State)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	prefix := "statewise-test-" + t.Name()
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	exerciseStore(t, NewRedisStore(client, prefix))
}
