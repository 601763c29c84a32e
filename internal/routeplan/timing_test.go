package routeplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateArrivalsAccumulatesSegments(t *testing.T) {
	stops := []string{"A", "B", "C"}
	segments := []Segment{
		{From: "A", To: "B", DurationSeconds: 300},
		{From: "B", To: "C", DurationSeconds: 600},
	}

	arrivals, err := EstimateArrivals(stops, segments, "09:00:00")
	require.NoError(t, err)
	require.Len(t, arrivals, 3)

	assert.Equal(t, "09:00:00", arrivals[0].ETA)
	assert.Equal(t, "09:05:00", arrivals[1].ETA)
	assert.Equal(t, "09:15:00", arrivals[2].ETA)
}

func TestEstimateArrivalsAcceptsMinuteOnlyStartTime(t *testing.T) {
	stops := []string{"A", "B", "C"}
	segments := []Segment{
		{From: "A", To: "B", DurationSeconds: 300},
		{From: "B", To: "C", DurationSeconds: 600},
	}

	arrivals, err := EstimateArrivals(stops, segments, "09:00")
	require.NoError(t, err)
	require.Len(t, arrivals, 3)

	assert.Equal(t, "09:00:00", arrivals[0].ETA)
	assert.Equal(t, "09:05:00", arrivals[1].ETA)
	assert.Equal(t, "09:15:00", arrivals[2].ETA)
}

func TestEstimateArrivalsMissingSegmentYieldsTBD(t *testing.T) {
	stops := []string{"A", "B", "C", "D"}
	segments := []Segment{
		{From: "A", To: "B", DurationSeconds: 120},
		// B -> C missing
		{From: "C", To: "D", DurationSeconds: 60},
	}

	arrivals, err := EstimateArrivals(stops, segments, "10:30:00")
	require.NoError(t, err)
	require.Len(t, arrivals, 4)

	assert.Equal(t, "10:30:00", arrivals[0].ETA)
	assert.Equal(t, "10:32:00", arrivals[1].ETA)
	assert.Equal(t, UnknownArrival, arrivals[2].ETA)
	assert.Equal(t, UnknownArrival, arrivals[3].ETA)
}

func TestEstimateArrivalsRejectsBadStartTime(t *testing.T) {
	_, err := EstimateArrivals([]string{"A"}, nil, "9am")
	assert.Error(t, err)
}

func TestEstimateArrivalsEmptyStops(t *testing.T) {
	arrivals, err := EstimateArrivals(nil, nil, "09:00:00")
	require.NoError(t, err)
	assert.Empty(t, arrivals)
}

func TestEstimateArrivalsSingleStop(t *testing.T) {
	arrivals, err := EstimateArrivals([]string{"A"}, nil, "23:59:30")
	require.NoError(t, err)
	require.Len(t, arrivals, 1)
	assert.Equal(t, "23:59:30", arrivals[0].ETA)
}
