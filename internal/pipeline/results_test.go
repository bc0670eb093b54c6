package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docchunk/internal/record"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	assert.Equal(t, h1, h2)
	// SHA-256 of "hello world" is well-known.
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", h1)
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHashHex([]byte{}))
}

func TestReport_AddAndCollection(t *testing.T) {
	r := &Report{}
	r.add(DocResult{Label: "a", Status: StatusCompleted, Chunks: []record.Chunk{{Author: "a", Text: "1"}, {Author: "a", Text: "2"}}})
	r.add(DocResult{Label: "b", Status: StatusFailed, Err: errors.New("boom"), Chunks: []record.Chunk{{Author: "b", Text: "x"}}})
	r.add(DocResult{Label: "c", Status: StatusEmpty})
	r.add(DocResult{Label: "d", Status: StatusCompleted, Chunks: []record.Chunk{{Author: "d", Text: "3"}}})

	assert.Equal(t, 3, r.Chunks)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, []record.Chunk{
		{Author: "a", Text: "1"},
		{Author: "a", Text: "2"},
		{Author: "d", Text: "3"},
	}, r.Collection())

	failed := r.FailedDocuments()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Label)
}

func TestTimingsSnapshotPercentiles(t *testing.T) {
	stats := NewTimings()
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms) * time.Millisecond)
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

func TestTimingsEmpty(t *testing.T) {
	assert.Equal(t, StatsSnapshot{}, NewTimings().Snapshot())
}

func TestTimingsNegativeClamped(t *testing.T) {
	stats := NewTimings()
	stats.Record(-time.Second)
	assert.Equal(t, int64(0), stats.Snapshot().MinMs)
}

func TestPercentileBounds(t *testing.T) {
	values := []int64{10, 20, 30}
	assert.Equal(t, 10.0, percentile(values, 0))
	assert.Equal(t, 30.0, percentile(values, 100))
	assert.Equal(t, 20.0, percentile(values, 50))
	assert.Equal(t, 0.0, percentile(nil, 50))
}
