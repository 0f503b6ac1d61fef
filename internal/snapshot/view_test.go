package snapshot

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/statewise/internal/weather"
)

func TestNewViewFullWeather(t *testing.T) {
	rec, err := weather.NewRecord([]byte(`{"weather":[{"main":"Snow","description":"light snow"}],` +
		`"main":{"temp":-2.5,"humidity":86,"pressure":1019},"wind":{"speed":4.12},"name":"Denver"}`))
	require.NoError(t, err)

	v := NewView(Snapshot{State: "Colorado", Weather: rec})
	assert.Equal(t, weather.MoodSnow, v.Mood)
	assert.Equal(t, "Denver", v.Location)
	assert.Equal(t, "-3°C", v.Temperature)
	assert.Equal(t, "light snow", v.Description)
	assert.Equal(t, "86%", v.Humidity)
	assert.Equal(t, "4.12 m/s", v.Wind)
	assert.Equal(t, "1019 hPa", v.Pressure)
	assert.NotNil(t, v.Activities)
	assert.Empty(t, v.Activities)
}

func TestNewViewPlaceholders(t *testing.T) {
	v := NewView(Snapshot{State: "new mexico"})
	assert.Equal(t, weather.MoodBase, v.Mood)
	assert.Equal(t, "NEW MEXICO", v.Location)
	for _, field := range []string{v.Temperature, v.Description, v.Humidity, v.Wind, v.Pressure} {
		assert.Equal(t, Placeholder, field)
	}
}

func TestNewViewActivityCards(t *testing.T) {
	var acts []Activity
	for i := 0; i < 20; i++ {
		acts = append(acts, Activity{FullName: fmt.Sprintf("Park %d", i)})
	}
	acts[1] = Activity{Name: "Short Name", URL: "https://www.nps.gov/x", States: "AZ,UT", Designation: "National Monument"}
	acts[2] = Activity{}

	v := NewView(Snapshot{State: "Arizona", Activities: acts})
	require.Len(t, v.Activities, MaxDisplayedActivities)

	assert.Equal(t, ActivityCard{Title: "Park 0", Href: "#", Badge: "Park"}, v.Activities[0])
	assert.Equal(t, ActivityCard{
		Title: "Short Name", Href: "https://www.nps.gov/x", States: "AZ,UT", Badge: "National Monument",
	}, v.Activities[1])
	assert.Equal(t, "Park", v.Activities[2].Title)
	assert.Equal(t, "Park 11", v.Activities[11].Title)
}

func TestActivityJSON(t *testing.T) {
	raw := `{"fullName":"Acadia National Park","url":"https://www.nps.gov/acad/index.htm","states":"ME","extra":{"a":[1,2]}}`

	var a Activity
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "Acadia National Park", a.FullName)
	assert.Equal(t, "ME", a.States)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	built, err := json.Marshal(Activity{Name: "Made Up", Designation: "Trail"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Made Up","designation":"Trail"}`, string(built))

	var odd []Activity
	require.NoError(t, json.Unmarshal([]byte(`[1,"x",null,{"name":5}]`), &odd))
	require.Len(t, odd, 4)
	assert.Empty(t, odd[3].Name)
	out, err = json.Marshal(odd)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"x",null,{"name":5}]`, string(out))
}

func TestActivityRejectsInvalidJSON(t *testing.T) {
	var a Activity
	assert.Error(t, a.UnmarshalJSON([]byte(`{"fullName":`)))
	assert.Nil(t, a.raw)
}

func TestResultJSON(t *testing.T) {
	rec, err := weather.NewRecord([]byte(`{"name":"Iowa"}`))
	require.NoError(t, err)

	out, err := json.Marshal(Result{SavedID: 7, Weather: rec, Activities: []Activity{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"savedId":7,"weather":{"name":"Iowa"},"activities":[]}`, string(out))

	out, err = json.Marshal(Result{SavedID: 8, Activities: []Activity{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"savedId":8,"weather":null,"activities":[]}`, string(out))
}
