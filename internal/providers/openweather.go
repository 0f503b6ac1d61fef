package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/statewise/internal/config"
	"github.com/i474232898/statewise/internal/snapshot"
	"github.com/i474232898/statewise/internal/weather"
)

// OpenWeatherProvider fetches current conditions from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, cfg *config.AppConfig) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL + "/data/2.5/weather",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Timeout: cfg.UpstreamTimeout,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// FetchWeather queries by the state text exactly as the user typed it, qualified
// with the US country code. The body is returned as received.
func (p *OpenWeatherProvider) FetchWeather(ctx context.Context, stateQuery string) (*weather.Record, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, snapshot.ErrConfiguration)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", stateQuery+",US")
		values.Set("units", "metric")
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	rec, err := weather.NewRecord(body)
	if err != nil {
		return nil, &snapshot.UpstreamError{Provider: p.name, Status: http.StatusBadGateway, Err: err}
	}
	return rec, nil
}
