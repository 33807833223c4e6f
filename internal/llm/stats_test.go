package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int{300, 100, 500, 200, 400} {
		stats.Record(time.Duration(ms)*time.Millisecond, false)
	}

	snap := stats.Snapshot()
	assert.Equal(t, 5, snap.Count)
	assert.Equal(t, int64(100), snap.MinMs)
	assert.Equal(t, int64(500), snap.MaxMs)
	assert.Equal(t, 300.0, snap.AvgMs)
	assert.Equal(t, 300.0, snap.P50Ms)
	assert.InDelta(t, 480.0, snap.P95Ms, 1e-9)
	assert.InDelta(t, 496.0, snap.P99Ms, 1e-9)
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Now()
	stats := NewLLMStats(time.Minute)
	stats.now = func() time.Time { return now }
	stats.Record(100*time.Millisecond, false)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 0, stats.Snapshot().Count)

	stats.Record(200*time.Millisecond, false)
	snap := stats.Snapshot()
	require.Equal(t, 1, snap.Count)
	assert.Equal(t, int64(200), snap.MinMs)
	assert.Equal(t, int64(200), snap.MaxMs)
}

func TestLLMStatsErrorsExcludedFromLatency(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10*time.Millisecond, false)
	stats.Record(time.Second, true)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 1, snap.Errors)
	assert.Equal(t, int64(0), snap.MaxMs)
}

type scripted struct {
	text string
	err  error
}

func (s scripted) Generate(context.Context, string) (string, error) { return s.text, s.err }
func (s scripted) Provider() string                                  { return "fake" }
func (s scripted) Model() string                                     { return "fake-1" }

func TestStatsGenerator_RecordsCalls(t *testing.T) {
	stats := NewLLMStats(time.Hour)

	ok := WithStats(scripted{text: "hi"}, stats)
	text, err := ok.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
	assert.Equal(t, "fake-1", ok.Model())

	bad := WithStats(scripted{err: errors.New("boom")}, stats)
	_, err = bad.Generate(context.Background(), "p")
	require.Error(t, err)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 1, snap.Errors)
}
