package collector

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-dashboard/internal/blobstore"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
)

const seattleBody = `{"main":{"temp":55,"feels_like":52,"humidity":80},"weather":[{"description":"cloudy"}]}`

type fakeWeather struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeWeather) Name() string { return "fake" }

func (f *fakeWeather) CurrentWeather(_ context.Context, city string) (*weather.Observation, error) {
	f.calls = append(f.calls, city)
	if err, ok := f.errs[city]; ok {
		return nil, err
	}
	body, ok := f.bodies[city]
	if !ok {
		return nil, errors.New("404 city not found")
	}
	return weather.ParseObservation(city, []byte(body), time.Now())
}

type fakeBackend struct {
	exists    bool
	lookupErr error
	createErr error
	uploadErr error
	creates   int
	keys      []string
}

func (f *fakeBackend) Name() string { return "GCS" }

func (f *fakeBackend) BucketExists(context.Context, string) (bool, error) {
	return f.exists, f.lookupErr
}

func (f *fakeBackend) CreateBucket(context.Context, string) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.exists = true
	return nil
}

func (f *fakeBackend) Upload(_ context.Context, _, key string, _ []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.keys = append(f.keys, key)
	return nil
}

type fakeMetrics struct {
	fetches map[bool]int
	saves   map[bool]int
	runs    map[bool]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{fetches: map[bool]int{}, saves: map[bool]int{}, runs: map[bool]int{}}
}

func (m *fakeMetrics) RecordFetch(_ context.Context, _ string, ok bool) { m.fetches[ok]++ }
func (m *fakeMetrics) RecordSave(_ context.Context, _ string, ok bool)  { m.saves[ok]++ }
func (m *fakeMetrics) RecordRun(_ context.Context, ok bool)             { m.runs[ok]++ }

func createTestCollector(t *testing.T, cities []string, ws *fakeWeather, backend *fakeBackend, out *bytes.Buffer) *Collector {
	t.Helper()
	logger := zaptest.NewLogger(t)
	tele := &telemetry.Telemetry{}
	store := blobstore.NewStore(backend, "weather-bucket", "weather-data", logger, tele)
	return NewCollector(config.CollectorConfig{Cities: cities}, ws, store, out, logger, tele)
}

func TestRun_SeattleDisplaysAndSaves(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, ws, backend, &out)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "\nFetching weather for Seattle...\n")
	assert.Contains(t, output, "Temperature: 55°F\n")
	assert.Contains(t, output, "Feels like: 52°F\n")
	assert.Contains(t, output, "Humidity: 80%\n")
	assert.Contains(t, output, "Conditions: cloudy\n")
	assert.Contains(t, output, "Weather data for Seattle saved to GCS!\n")

	require.Len(t, backend.keys, 1)
	assert.Regexp(t, `^weather-data/Seattle-\d{8}-\d{6}\.json$`, backend.keys[0])

	require.Len(t, summary.Cities, 1)
	assert.True(t, summary.Cities[0].Saved)
	assert.Equal(t, backend.keys[0], summary.Cities[0].Key)
	assert.Equal(t, 1, summary.Saved())

	last, ok := c.LastRun()
	require.True(t, ok)
	assert.True(t, last.OK)
	assert.Equal(t, 1, last.Saved)
}

func TestRun_FetchFailureDoesNotStopLaterCities(t *testing.T) {
	ws := &fakeWeather{
		bodies: map[string]string{"Seattle": seattleBody},
		errs:   map[string]error{"Philadelphia": errors.New("dial tcp: connection refused")},
	}
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer
	m := newFakeMetrics()

	c := createTestCollector(t, []string{"Philadelphia", "Seattle"}, ws, backend, &out)
	c.SetMetricsRecorder(m)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Philadelphia", "Seattle"}, ws.calls)
	assert.Contains(t, out.String(), "Error fetching weather data: dial tcp: connection refused\n")
	assert.Contains(t, out.String(), "Failed to fetch weather data for Philadelphia\n")

	require.Len(t, backend.keys, 1, "no save for the failed city")
	assert.True(t, strings.HasPrefix(backend.keys[0], "weather-data/Seattle-"))

	assert.False(t, summary.Cities[0].Fetched)
	assert.True(t, summary.Cities[1].Saved)
	assert.Equal(t, 1, summary.Failed())

	assert.Equal(t, 1, m.fetches[false])
	assert.Equal(t, 1, m.fetches[true])
	assert.Equal(t, 1, m.saves[true])
	assert.Equal(t, 1, m.runs[true])
}

func TestRun_MissingFieldAbortsRun(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{
		"Philadelphia": `{"main":{"temp":40,"feels_like":35,"humidity":60}}`,
		"Seattle":      seattleBody,
	}}
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer
	m := newFakeMetrics()

	c := createTestCollector(t, []string{"Philadelphia", "Seattle"}, ws, backend, &out)
	c.SetMetricsRecorder(m)

	summary, err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrMissingField)
	assert.Contains(t, err.Error(), "Philadelphia")

	assert.Equal(t, []string{"Philadelphia"}, ws.calls, "no city after the malformed one is processed")
	assert.Empty(t, backend.keys)
	assert.NotContains(t, out.String(), "Temperature:")
	require.Len(t, summary.Cities, 1)
	assert.Equal(t, 1, m.runs[false])

	last, ok := c.LastRun()
	require.True(t, ok)
	assert.False(t, last.OK)
	assert.Equal(t, summary.RunID, last.RunID)
}

func TestRun_SkipMalformedContinues(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{
		"Philadelphia": `{"main":{"temp":40,"feels_like":35,"humidity":60}}`,
		"Seattle":      seattleBody,
	}}
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer

	logger := zaptest.NewLogger(t)
	store := blobstore.NewStore(backend, "weather-bucket", "weather-data", logger, nil)
	c := NewCollector(config.CollectorConfig{
		Cities:        []string{"Philadelphia", "Seattle"},
		SkipMalformed: true,
	}, ws, store, &out, logger, nil)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Philadelphia", "Seattle"}, ws.calls)
	assert.Contains(t, out.String(), "Malformed weather data for Philadelphia")
	assert.Len(t, backend.keys, 1)
	assert.Equal(t, 1, summary.Saved())
}

func TestRun_ExistingBucketIsNotCreated(t *testing.T) {
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}, backend, &out)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, backend.creates)
	assert.True(t, strings.HasPrefix(out.String(), "Bucket weather-bucket exists\n"))
	assert.Equal(t, blobstore.ContainerExists, summary.Container)
}

func TestRun_MissingBucketIsCreated(t *testing.T) {
	backend := &fakeBackend{}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}, backend, &out)

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, backend.creates)
	assert.Contains(t, out.String(), "Creating bucket weather-bucket\nSuccessfully created bucket weather-bucket\n")
}

func TestRun_BucketErrorIsNotFatal(t *testing.T) {
	backend := &fakeBackend{lookupErr: errors.New("403 forbidden")}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}, backend, &out)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Error checking/creating bucket:")
	assert.Contains(t, out.String(), "403 forbidden")
	assert.Equal(t, 0, backend.creates)
	assert.Equal(t, blobstore.ContainerFailed, summary.Container)
	assert.True(t, summary.Cities[0].Fetched)
}

func TestRun_BucketCreateFailureReportsAttempt(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("quota exceeded")}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}, backend, &out)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "Creating bucket weather-bucket\nError checking/creating bucket: "))
	assert.Contains(t, out.String(), "quota exceeded")
	assert.NotContains(t, out.String(), "Successfully created bucket")
	assert.Equal(t, blobstore.ContainerFailed, summary.Container)
}

func TestRun_WrongTypedFieldAbortsRun(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{
		"Philadelphia": `{"main":{"temp":"hot","feels_like":35,"humidity":60},"weather":{}}`,
		"Seattle":      seattleBody,
	}}
	backend := &fakeBackend{exists: true}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Philadelphia", "Seattle"}, ws, backend, &out)

	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrMissingField)
	assert.Equal(t, []string{"Philadelphia"}, ws.calls)
	assert.NotContains(t, out.String(), "Error fetching weather data")
	assert.Empty(t, backend.keys)
}

func TestRun_SaveFailureContinues(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{"Seattle": seattleBody, "New York": seattleBody}}
	backend := &fakeBackend{exists: true, uploadErr: errors.New("bucket not found")}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle", "New York"}, ws, backend, &out)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Seattle", "New York"}, ws.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Error saving to GCS:"))
	assert.NotContains(t, out.String(), "saved to GCS!")
	assert.Equal(t, 2, summary.Failed())
}

func TestRun_CancelledContextStopsBeforeNextCity(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{"Seattle": seattleBody}}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle", "New York"}, ws, &fakeBackend{exists: true}, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ws.calls)
}

func TestRunCities_OverridesList(t *testing.T) {
	ws := &fakeWeather{bodies: map[string]string{"Boston": seattleBody}}
	var out bytes.Buffer

	c := createTestCollector(t, []string{"Seattle"}, ws, &fakeBackend{exists: true}, &out)

	summary, err := c.RunCities(context.Background(), []string{"Boston"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Boston"}, ws.calls)
	assert.Equal(t, "Boston", summary.Cities[0].City)
	assert.Equal(t, []string{"Seattle"}, c.Cities())
}
