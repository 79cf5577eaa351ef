package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusConverged, StatusIterationCapped, StatusTimedOut, StatusStructureError} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Status("bogus").IsValid())
}

func TestStatus_Worst(t *testing.T) {
	assert.Equal(t, StatusIterationCapped, StatusConverged.Worst(StatusIterationCapped))
	assert.Equal(t, StatusStructureError, StatusIterationCapped.Worst(StatusStructureError))
	assert.Equal(t, StatusTimedOut, StatusStructureError.Worst(StatusTimedOut))
	assert.Equal(t, StatusTimedOut, StatusTimedOut.Worst(StatusConverged))
}

func TestProcessingResult_ElapsedSeconds(t *testing.T) {
	r := &ProcessingResult{Elapsed: 1500 * time.Millisecond}
	assert.InDelta(t, 1.5, r.ElapsedSeconds(), 1e-9)
}

func TestParseAudienceLevel(t *testing.T) {
	for _, l := range AllAudienceLevels() {
		got, err := ParseAudienceLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	got, err := ParseAudienceLevel("  Advanced ")
	require.NoError(t, err)
	assert.Equal(t, AudienceAdvanced, got)

	_, err = ParseAudienceLevel("expert")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "level(9)", AudienceLevel(9).String())
}

func TestSpan(t *testing.T) {
	a := Span{Start: 2, End: 6}
	assert.Equal(t, 4, a.Len())
	assert.True(t, a.Overlaps(Span{Start: 5, End: 9}))
	assert.False(t, a.Overlaps(Span{Start: 6, End: 9}))
	assert.Equal(t, "cdef", a.Text("abcdefgh"))
}

func TestGrid_CountAndDims(t *testing.T) {
	inner := &Grid{Kind: "matrix(", Rows: [][]Cell{{{Raw: "a"}}}}
	g := Grid{Rows: [][]Cell{{{Nested: inner}, {Nested: inner}}}}

	assert.Equal(t, 3, g.Count())
	rows, cols := g.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)

	rows, cols = Grid{}.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}
