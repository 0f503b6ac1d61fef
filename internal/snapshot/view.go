package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/statewise/internal/weather"
)

// MaxDisplayedActivities is how many activity cards the results page shows.
const MaxDisplayedActivities = 12

// Placeholder is shown for any weather value the provider did not send.
const Placeholder = "—"

// View is what the results page renders for a snapshot.
type View struct {
	Mood        weather.Mood   `json:"mood"`
	Location    string         `json:"location"`
	Temperature string         `json:"temperature"`
	Description string         `json:"description"`
	Humidity    string         `json:"humidity"`
	Wind        string         `json:"wind"`
	Pressure    string         `json:"pressure"`
	Activities  []ActivityCard `json:"activities"`
}

// ActivityCard is one entry of the activities grid.
type ActivityCard struct {
	Title  string `json:"title"`
	Href   string `json:"href"`
	States string `json:"states,omitempty"`
	Badge  string `json:"badge"`
}

// NewView derives the page model. Missing weather fields become Placeholder.
func NewView(s Snapshot) View {
	w := s.Weather
	v := View{
		Mood:        weather.MoodOf(w),
		Location:    strings.ToUpper(s.State),
		Temperature: Placeholder,
		Description: Placeholder,
		Humidity:    Placeholder,
		Wind:        Placeholder,
		Pressure:    Placeholder,
	}

	if name, ok := w.Name(); ok {
		v.Location = name
	}
	if t, ok := w.Temperature(); ok {
		v.Temperature = fmt.Sprintf("%d°C", int(math.Round(t)))
	}
	if d, ok := w.Description(); ok {
		v.Description = d
	}
	if h, ok := w.Humidity(); ok {
		v.Humidity = formatNumber(h) + "%"
	}
	if ws, ok := w.WindSpeed(); ok {
		v.Wind = formatNumber(ws) + " m/s"
	}
	if p, ok := w.Pressure(); ok {
		v.Pressure = formatNumber(p) + " hPa"
	}

	n := len(s.Activities)
	if n > MaxDisplayedActivities {
		n = MaxDisplayedActivities
	}
	v.Activities = make([]ActivityCard, 0, n)
	for _, a := range s.Activities[:n] {
		v.Activities = append(v.Activities, newActivityCard(a))
	}
	return v
}

func newActivityCard(a Activity) ActivityCard {
	return ActivityCard{
		Title:  firstNonEmpty(a.FullName, a.Name, "Park"),
		Href:   firstNonEmpty(a.URL, "#"),
		States: a.States,
		Badge:  firstNonEmpty(a.Designation, "Park"),
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
