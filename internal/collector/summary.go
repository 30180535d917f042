package collector

import (
	"time"

	"github.com/vzahanych/weather-dashboard/internal/blobstore"
)

type CityResult struct {
	City    string `json:"city"`
	Fetched bool   `json:"fetched"`
	Saved   bool   `json:"saved"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Summary struct {
	RunID     string                   `json:"run_id"`
	StartedAt time.Time                `json:"started_at"`
	Duration  string                   `json:"duration"`
	Bucket    string                   `json:"bucket"`
	Container blobstore.ContainerState `json:"container"`
	Cities    []CityResult             `json:"cities"`
}

func (s *Summary) Saved() int {
	n := 0
	for _, c := range s.Cities {
		if c.Saved {
			n++
		}
	}
	return n
}

func (s *Summary) Failed() int {
	return len(s.Cities) - s.Saved()
}

type RunStatus struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	OK         bool      `json:"ok"`
	Saved      int       `json:"saved"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}
