package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weirdgiraffe/1brc-chunked/internal/chunk"
	"github.com/weirdgiraffe/1brc-chunked/internal/measure"
)

func TestProcessChunkSplitsFragments(t *testing.T) {
	src := writeInput(t, scenario)
	ctx := context.Background()

	first, err := ProcessChunk(ctx, src, chunk.Range{Start: 0, End: 21}, 8)
	require.NoError(t, err)
	assert.Equal(t, scenario[14:21], string(first.Leftover()))
	assert.Equal(t, []chunk.Range{{Start: 0, End: 21}}, first.Ranges())
	assert.EqualValues(t, 1, first.Records)
	assert.Equal(t, map[string]measure.Info{
		"StationA": {Min: 10, Max: 10, Sum: 10, Count: 1},
	}, first.Table.Snapshot())

	second, err := ProcessChunk(ctx, src, chunk.Range{Start: 21, End: 42}, 8)
	require.NoError(t, err)
	assert.Equal(t, scenario[21:28], string(second.Leftover()))
	assert.EqualValues(t, 1, second.Records)
	assert.Equal(t, map[string]measure.Info{
		"StationA": {Min: 20, Max: 20, Sum: 20, Count: 1},
	}, second.Table.Snapshot())
}

func TestProcessChunkStartingOnLineBoundary(t *testing.T) {
	src := writeInput(t, scenario)

	// a range starting exactly at a line still hands its first line over
	out, err := ProcessChunk(context.Background(), src, chunk.Range{Start: 14, End: 42}, 64)
	require.NoError(t, err)
	assert.Equal(t, "StationB;-5.5\n", string(out.Leftover()))
	assert.EqualValues(t, 1, out.Records)
}

func TestProcessChunkWithoutNewline(t *testing.T) {
	src := writeInput(t, scenario)

	out, err := ProcessChunk(context.Background(), src, chunk.Range{Start: 15, End: 20}, 2)
	require.NoError(t, err)
	assert.Equal(t, scenario[15:20], string(out.Leftover()))
	assert.Zero(t, out.Table.Len())
}

func TestProcessChunkEmptyRange(t *testing.T) {
	src := writeInput(t, scenario)

	out, err := ProcessChunk(context.Background(), src, chunk.Range{Start: 7, End: 7}, 8)
	require.NoError(t, err)
	assert.Empty(t, out.Leftover())
	assert.Zero(t, out.Table.Len())
}

func TestLeftoversRoundTrip(t *testing.T) {
	input := generate(4, 300)
	src := writeInput(t, input)

	for workers := 1; workers <= 40; workers++ {
		outcomes := make([]*Outcome, 0, workers)
		for _, r := range chunk.Plan(workers, src.Size()) {
			out, err := ProcessChunk(context.Background(), src, r, 32)
			require.NoError(t, err)
			outcomes = append(outcomes, out)
		}

		merged := Reduce(outcomes)
		leftover := merged.Leftover()
		consumed, records := measure.ParseRecords(leftover, measure.NewTable())
		assert.Equal(t, len(leftover), consumed, "workers=%d", workers)
		assert.EqualValues(t, 300, merged.Records+int64(records), "workers=%d", workers)
	}
}
