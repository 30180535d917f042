package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the YYYYMMDD-HHMMSS form stamped into persisted observations.
const TimestampLayout = "20060102-150405"

const TimestampField = "timestamp"

var (
	ErrEmptyPayload = errors.New("empty weather payload")
	ErrMissingField = errors.New("missing field in weather payload")
)

// Observation is one weather snapshot for a city. Payload is the raw API object and is what
// gets persisted.
type Observation struct {
	City      string
	Payload   map[string]interface{}
	FetchedAt time.Time
}

// Display holds the four printed fields. Numbers keep the text the API sent, so 55.0 stays 55.0.
type Display struct {
	Temperature json.Number
	FeelsLike   json.Number
	Humidity    json.Number
	Description string
}

// ParseObservation decodes a response body. Numbers in the raw payload are kept as
// json.Number so the persisted document carries them exactly as received.
func ParseObservation(city string, body []byte, fetchedAt time.Time) (*Observation, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	return &Observation{
		City:      city,
		Payload:   payload,
		FetchedAt: fetchedAt,
	}, nil
}

// Display extracts the four fields printed for a city. An absent field, or one with the wrong
// JSON type, yields ErrMissingField naming the path.
func (o *Observation) Display() (Display, error) {
	main, ok := o.Payload["main"].(map[string]interface{})
	if !ok {
		return Display{}, missing("main")
	}

	var d Display
	for _, f := range []struct {
		key string
		dst *json.Number
	}{
		{"temp", &d.Temperature},
		{"feels_like", &d.FeelsLike},
		{"humidity", &d.Humidity},
	} {
		n, ok := main[f.key].(json.Number)
		if !ok {
			return Display{}, missing("main." + f.key)
		}
		*f.dst = n
	}

	conditions, ok := o.Payload["weather"].([]interface{})
	if !ok || len(conditions) == 0 {
		return Display{}, missing("weather[0]")
	}
	first, ok := conditions[0].(map[string]interface{})
	if !ok {
		return Display{}, missing("weather[0]")
	}
	if d.Description, ok = first["description"].(string); !ok {
		return Display{}, missing("weather[0].description")
	}

	return d, nil
}

// Stamp injects the save-time timestamp as a top-level payload field.
func (o *Observation) Stamp(ts string) {
	if o.Payload == nil {
		o.Payload = make(map[string]interface{})
	}
	o.Payload[TimestampField] = ts
}

func (o *Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Payload)
}

func (d Display) Lines() []string {
	return []string{
		"Temperature: " + d.Temperature.String() + "°F",
		"Feels like: " + d.FeelsLike.String() + "°F",
		"Humidity: " + d.Humidity.String() + "%",
		"Conditions: " + d.Description,
	}
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func missing(path string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, path)
}
