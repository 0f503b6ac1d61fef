package weather

import (
	"encoding/json"
	"errors"
)

// ErrInvalidRecord is returned when a weather payload is not valid JSON.
var ErrInvalidRecord = errors.New("weather payload is not valid JSON")

// Record is an upstream weather payload kept verbatim. Its shape belongs to the
// provider; only the paths read by the accessors below are relied upon:
//
//	weather[0].main, weather[0].description, main.temp, main.humidity,
//	main.pressure, wind.speed, name
type Record struct {
	raw    json.RawMessage
	fields any
}

// NewRecord wraps a raw JSON payload.
func NewRecord(raw []byte) (*Record, error) {
	r := &Record{}
	if err := r.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return r, nil
}

// Raw returns the payload bytes as received.
func (r *Record) Raw() json.RawMessage {
	if r == nil {
		return nil
	}
	return r.raw
}

// MarshalJSON writes the received payload back out.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// UnmarshalJSON keeps a copy of data and decodes it for the accessors.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return ErrInvalidRecord
	}
	var fields any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.raw = append(json.RawMessage(nil), data...)
	r.fields = fields
	return nil
}

// Temperature returns main.temp in degrees Celsius (the client requests metric units).
func (r *Record) Temperature() (float64, bool) {
	return r.number("main", "temp")
}

// Humidity returns main.humidity in percent.
func (r *Record) Humidity() (float64, bool) {
	return r.number("main", "humidity")
}

// Pressure returns main.pressure in hPa.
func (r *Record) Pressure() (float64, bool) {
	return r.number("main", "pressure")
}

// WindSpeed returns wind.speed in m/s.
func (r *Record) WindSpeed() (float64, bool) {
	return r.number("wind", "speed")
}

// Condition returns weather[0].main, e.g. "Clouds".
func (r *Record) Condition() (string, bool) {
	return r.text("weather", 0, "main")
}

// Description returns weather[0].description, e.g. "broken clouds".
func (r *Record) Description() (string, bool) {
	return r.text("weather", 0, "description")
}

// Name returns the provider's display name for the resolved location.
func (r *Record) Name() (string, bool) {
	return r.text("name")
}

func (r *Record) number(path ...any) (float64, bool) {
	v, ok := r.lookup(path...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (r *Record) text(path ...any) (string, bool) {
	v, ok := r.lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// lookup walks object keys (string) and array indexes (int). Any missing or
// mistyped link ends the walk with ok=false.
func (r *Record) lookup(path ...any) (any, bool) {
	if r == nil {
		return nil, false
	}
	cur := r.fields
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = obj[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}
