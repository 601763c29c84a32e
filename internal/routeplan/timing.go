package routeplan

import (
	"fmt"
	"time"
)

// UnknownArrival is reported for stops whose leading segment timing is missing.
const UnknownArrival = "TBD"

const clockLayout = "15:04:05"

// parseClock accepts both HH:MM:SS and the shorter HH:MM form riders send.
func parseClock(value string) (time.Time, error) {
	t, err := time.Parse(clockLayout, value)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04", value)
}

// Segment is a directed leg between two stops with a measured travel time.
type Segment struct {
	From            string `json:"from" validate:"required"`
	To              string `json:"to" validate:"required"`
	DurationSeconds int64  `json:"duration_seconds" validate:"gte=0"`
}

// Arrival pairs a stop with its estimated clock arrival time.
type Arrival struct {
	Stop string `json:"stop"`
	ETA  string `json:"eta"`
}

// EstimateArrivals walks the stops in order, accumulating matching segment
// durations onto the start clock time. The first stop arrives at startTime. A
// stop whose leading segment is missing gets UnknownArrival, as do all stops
// after it: with one leg unknown the later clock math cannot be trusted.
func EstimateArrivals(stops []string, segments []Segment, startTime string) ([]Arrival, error) {
	if len(stops) == 0 {
		return []Arrival{}, nil
	}

	start, err := parseClock(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q (expected HH:MM:SS or HH:MM): %w", startTime, err)
	}

	durations := make(map[[2]string]int64, len(segments))
	for _, segment := range segments {
		durations[[2]string{segment.From, segment.To}] = segment.DurationSeconds
	}

	arrivals := make([]Arrival, 0, len(stops))
	arrivals = append(arrivals, Arrival{Stop: stops[0], ETA: start.Format(clockLayout)})

	clock := start
	known := true
	for i := 1; i < len(stops); i++ {
		if known {
			seconds, ok := durations[[2]string{stops[i-1], stops[i]}]
			if !ok {
				known = false
			} else {
				clock = clock.Add(time.Duration(seconds) * time.Second)
			}
		}
		if !known {
			arrivals = append(arrivals, Arrival{Stop: stops[i], ETA: UnknownArrival})
			continue
		}
		arrivals = append(arrivals, Arrival{Stop: stops[i], ETA: clock.Format(clockLayout)})
	}

	return arrivals, nil
}
