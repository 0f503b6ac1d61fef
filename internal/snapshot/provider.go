package snapshot

import (
	"context"

	"github.com/i474232898/statewise/internal/states"
	"github.com/i474232898/statewise/internal/weather"
)

// WeatherFetcher fetches current weather for a free-text place name.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, stateQuery string) (*weather.Record, error)
}

// ActivitiesFetcher fetches outdoor activity sites for a state code.
type ActivitiesFetcher interface {
	FetchActivities(ctx context.Context, code states.Code) ([]Activity, error)
}

// Store is the contract every snapshot backend (memory, SQL, Redis) satisfies.
// Create assigns the id and creation time; the stored copy is independent of s.
type Store interface {
	Create(ctx context.Context, s Snapshot) (Snapshot, error)
	Get(ctx context.Context, id int64) (Snapshot, error)
	ListByState(ctx context.Context, state string, limit int) ([]Snapshot, error)
}
