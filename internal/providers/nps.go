package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/statewise/internal/config"
	"github.com/i474232898/statewise/internal/snapshot"
	"github.com/i474232898/statewise/internal/states"
)

// NPSProvider lists parks, trails and historic sites from the National Park Service API.
type NPSProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNPSProvider(client *http.Client, cfg *config.AppConfig) *NPSProvider {
	return &NPSProvider{
		name:    "nps",
		apiKey:  cfg.NPSAPIKey,
		baseURL: cfg.NPSBaseURL + "/api/v1/parks",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Timeout: cfg.UpstreamTimeout,
		},
		circuit: newCircuitBreaker("nps"),
	}
}

func (p *NPSProvider) Name() string {
	return p.name
}

// FetchActivities returns at most snapshot.MaxActivities parks for the code. A payload
// without a data array yields an empty, non-nil slice.
func (p *NPSProvider) FetchActivities(ctx context.Context, code states.Code) ([]snapshot.Activity, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, snapshot.ErrConfiguration)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("stateCode", code.String())
		values.Set("limit", strconv.Itoa(snapshot.MaxActivities))
		values.Set("api_key", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	return parseParks(body, code), nil
}

func parseParks(body []byte, code states.Code) []snapshot.Activity {
	fields := log.Fields{"provider": "nps", "stateCode": code}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.WithFields(fields).WithError(err).Warn("undecodable parks payload; returning no activities")
		return []snapshot.Activity{}
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || data[0] != '[' {
		log.WithFields(fields).Warn("parks payload has no data array; returning no activities")
		return []snapshot.Activity{}
	}

	var parks []snapshot.Activity
	if err := json.Unmarshal(data, &parks); err != nil {
		log.WithFields(fields).WithError(err).Warn("undecodable parks list; returning no activities")
		return []snapshot.Activity{}
	}
	if parks == nil {
		parks = []snapshot.Activity{}
	}
	if len(parks) > snapshot.MaxActivities {
		parks = parks[:snapshot.MaxActivities]
	}
	return parks
}
