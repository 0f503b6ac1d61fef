package snapshot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/i474232898/statewise/internal/config"
	"github.com/i474232898/statewise/internal/states"
	"github.com/i474232898/statewise/internal/weather"
)

// Service orchestrates the weather and activities providers and persists snapshots.
type Service struct {
	cfg        *config.AppConfig
	weather    WeatherFetcher
	activities ActivitiesFetcher
	store      Store
}

// NewService creates a new Service.
func NewService(cfg *config.AppConfig, w WeatherFetcher, a ActivitiesFetcher, store Store) *Service {
	return &Service{
		cfg:        cfg,
		weather:    w,
		activities: a,
		store:      store,
	}
}

// BuildSnapshot fetches weather (by the free-text query) and activities (by the
// normalized code) concurrently, then persists the merged record. A failed upstream
// leaves its field empty instead of failing the call.
func (s *Service) BuildSnapshot(ctx context.Context, stateQuery string) (Result, error) {
	query := strings.TrimSpace(stateQuery)
	if query == "" {
		return Result{}, ErrMissingParameter
	}
	if s.cfg.OpenWeatherAPIKey == "" || s.cfg.NPSAPIKey == "" {
		return Result{}, fmt.Errorf("snapshot requires both provider credentials: %w", ErrConfiguration)
	}

	code := states.Normalize(query)
	fields := logFields(ctx).WithFields(log.Fields{"state": query, "stateCode": code})

	// Upstream calls and the insert finish even if the caller goes away; each provider
	// bounds its own call.
	upstreamCtx := context.WithoutCancel(ctx)

	var (
		wg         sync.WaitGroup
		rec        *weather.Record
		activities []Activity
	)

	wg.Add(2)
	go func() {
		defer wg.Done()

		r, err := s.weather.FetchWeather(upstreamCtx, query)
		if err != nil {
			// Log and continue; activities are still worth showing.
			fields.WithError(err).Warn("weather fetch failed; snapshot will have no weather")
			return
		}
		rec = r
	}()
	go func() {
		defer wg.Done()

		a, err := s.activities.FetchActivities(upstreamCtx, code)
		if err != nil {
			fields.WithError(err).Warn("activities fetch failed; snapshot will have no activities")
			return
		}
		activities = a
	}()
	wg.Wait()

	if activities == nil {
		activities = []Activity{}
	}

	saved, err := s.store.Create(upstreamCtx, Snapshot{
		State:      query,
		Weather:    rec,
		Activities: activities,
		UserNote:   nil,
	})
	if err != nil {
		fields.WithError(err).Error("failed to persist snapshot")
		return Result{}, &AggregationError{Err: err}
	}

	fields.WithFields(log.Fields{
		"savedId":    saved.ID,
		"hasWeather": rec != nil,
		"activities": len(activities),
	}).Info("snapshot saved")

	return Result{
		SavedID:    saved.ID,
		Weather:    rec,
		Activities: activities,
	}, nil
}

// FetchWeather is the weather-only lookup; client failures are returned as-is.
func (s *Service) FetchWeather(ctx context.Context, stateQuery string) (*weather.Record, error) {
	query := strings.TrimSpace(stateQuery)
	if query == "" {
		return nil, ErrMissingParameter
	}
	return s.weather.FetchWeather(ctx, query)
}

// FetchActivities is the activities-only lookup; the query is normalized first.
func (s *Service) FetchActivities(ctx context.Context, stateQuery string) ([]Activity, error) {
	query := strings.TrimSpace(stateQuery)
	if query == "" {
		return nil, ErrMissingParameter
	}
	return s.activities.FetchActivities(ctx, states.Normalize(query))
}

// GetSnapshot delegates to the underlying store.
func (s *Service) GetSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	return s.store.Get(ctx, id)
}

// ListSnapshots returns the newest snapshots for a state, or for all states when state is empty.
func (s *Service) ListSnapshots(ctx context.Context, state string, limit int) ([]Snapshot, error) {
	return s.store.ListByState(ctx, strings.TrimSpace(state), limit)
}

type requestIDKey struct{}

// WithRequestID tags ctx so service logs can be correlated with access logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func logFields(ctx context.Context) *log.Entry {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return log.WithField("requestId", id)
	}
	return log.NewEntry(log.StandardLogger())
}
