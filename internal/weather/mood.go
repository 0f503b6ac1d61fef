package weather

import (
	"github.com/i474232898/statewise/internal/common"
)

// Mood is the page theme derived from current conditions.
type Mood string

const (
	MoodBase   Mood = "base"
	MoodClear  Mood = "clear"
	MoodClouds Mood = "clouds"
	MoodRain   Mood = "rain"
	MoodSnow   Mood = "snow"
	MoodStorm  Mood = "storm"
	MoodMist   Mood = "mist"
)

// MoodOf classifies a record by matching weather[0].main and weather[0].description.
// Rules are checked in order; a thunderstorm with rain is a storm, not rain.
func MoodOf(r *Record) Mood {
	if r == nil {
		return MoodBase
	}
	main, _ := r.Condition()
	desc, _ := r.Description()
	s := main + " " + desc

	switch {
	case common.ContainsAnyFold(s, "thunder"):
		return MoodStorm
	case common.ContainsAnyFold(s, "drizzle", "rain"):
		return MoodRain
	case common.ContainsAnyFold(s, "snow", "sleet"):
		return MoodSnow
	case common.ContainsAnyFold(s, "fog", "mist", "haze", "smoke"):
		return MoodMist
	case common.ContainsAnyFold(s, "cloud"):
		return MoodClouds
	case common.ContainsAnyFold(s, "clear", "sun"):
		return MoodClear
	default:
		return MoodBase
	}
}
