package beeminder

import (
	"fmt"
	"time"
)

// DaystampLayout is the layout of Beeminder daystamps ("20150116").
const DaystampLayout = "20060102"

// Datapoint is one recorded value of a goal. Only the daystamp is decoded;
// the other fields Beeminder sends are ignored so their types cannot break
// a fetch.
type Datapoint struct {
	Daystamp string `json:"daystamp"`
}

// Date parses the datapoint's daystamp as midnight in loc.
func (d Datapoint) Date(loc *time.Location) (time.Time, error) {
	return ParseDaystamp(d.Daystamp, loc)
}

// ParseDaystamp parses an 8-digit YYYYMMDD daystamp as midnight in loc.
func ParseDaystamp(s string, loc *time.Location) (time.Time, error) {
	if len(s) != len(DaystampLayout) {
		return time.Time{}, fmt.Errorf("invalid daystamp %q: want 8 digits", s)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DaystampLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid daystamp %q: %w", s, err)
	}
	return t, nil
}

// APIError is returned when Beeminder answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("beeminder: fetching %s: http status %s", e.Path, e.Status)
}
