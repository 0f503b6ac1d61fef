package snapshot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/i474232898/statewise/internal/weather"
)

// MaxActivities is the page size requested from the parks provider.
const MaxActivities = 25

// Activity is one park entry from the NPS API. The upstream object is kept
// verbatim; the typed fields are the ones the page displays.
type Activity struct {
	FullName    string
	Name        string
	URL         string
	States      string
	Designation string

	raw json.RawMessage
}

// MarshalJSON writes the upstream object when one is held, otherwise the typed fields.
func (a Activity) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	return json.Marshal(activityFields{
		FullName:    a.FullName,
		Name:        a.Name,
		URL:         a.URL,
		States:      a.States,
		Designation: a.Designation,
	})
}

var errInvalidActivity = errors.New("activity is not valid JSON")

// UnmarshalJSON keeps data as-is and picks the display fields that are strings.
func (a *Activity) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return errInvalidActivity
	}

	*a = Activity{raw: append(json.RawMessage(nil), data...)}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		// Arrays, scalars and null are kept but carry no display fields.
		return nil
	}
	a.FullName = stringField(obj, "fullName")
	a.Name = stringField(obj, "name")
	a.URL = stringField(obj, "url")
	a.States = stringField(obj, "states")
	a.Designation = stringField(obj, "designation")
	return nil
}

type activityFields struct {
	FullName    string `json:"fullName,omitempty"`
	Name        string `json:"name,omitempty"`
	URL         string `json:"url,omitempty"`
	States      string `json:"states,omitempty"`
	Designation string `json:"designation,omitempty"`
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// Snapshot is one persisted search: the weather and activities seen for a state
// at a point in time. Weather is nil when the weather call failed.
type Snapshot struct {
	ID         int64           `json:"id"`
	State      string          `json:"state"`
	Weather    *weather.Record `json:"weather"`
	Activities []Activity      `json:"activities"`
	UserNote   *string         `json:"userNote"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Result is the response of a snapshot build.
type Result struct {
	SavedID    int64           `json:"savedId"`
	Weather    *weather.Record `json:"weather"`
	Activities []Activity      `json:"activities"`
}
