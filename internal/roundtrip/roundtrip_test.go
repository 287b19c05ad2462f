package roundtrip

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rb "github.com/sushydev/byte_ring_go"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	t.Parallel()

	cases := []Config{
		{Capacity: 1, Chunk: 1, Total: 100, Seed: 1},
		{Capacity: 3, Chunk: 5, Total: 1000, Seed: 2},
		{Capacity: 64, Chunk: 100, Total: 50_000, Seed: 3},
		{Capacity: 4096 + 7, Chunk: 1500, Total: 1 << 20, Seed: 4},
	}

	for _, cfg := range cases {
		result, err := Run(context.Background(), cfg, discardLogger())
		require.NoError(t, err, "config %+v", cfg)
		assert.Equal(t, cfg.Total, result.Bytes)
		assert.Positive(t, result.Steps)
	}
}

func TestRunWraps(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Config{Capacity: 10, Chunk: 7, Total: 10_000, Seed: 9}, discardLogger())
	require.NoError(t, err)
	assert.Positive(t, result.Wraps)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()
	cfg := Config{Capacity: 17, Chunk: 13, Total: 5000, Seed: 42}

	first, err := Run(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Wraps, second.Wraps)

	// same stream regardless of buffer geometry
	other, err := Run(context.Background(), Config{Capacity: 5, Chunk: 2, Total: 5000, Seed: 42}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, first.Checksum, other.Checksum)
}

func TestRunEmptyTotal(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Config{Capacity: 4, Chunk: 4}, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Bytes)
	assert.Zero(t, result.Steps)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Capacity: 8, Chunk: 8, Total: 1 << 20}, discardLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, Config{Capacity: 0, Chunk: 1}.Validate())
	assert.Error(t, Config{Capacity: 1, Chunk: 0}.Validate())
	assert.Error(t, Config{Capacity: 1, Chunk: 1, Total: -1}.Validate())
	assert.NoError(t, Config{Capacity: 1, Chunk: 1}.Validate())
}

func TestPatternIgnoresChunking(t *testing.T) {
	t.Parallel()

	whole := make([]byte, 37)
	newPattern(7).fill(whole)

	p := newPattern(7)
	pieces := make([]byte, 0, 37)
	for _, n := range []int{1, 3, 8, 9, 16} {
		b := make([]byte, n)
		p.fill(b)
		pieces = append(pieces, b...)
	}

	assert.Equal(t, whole, pieces)
}

func TestThroughput(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Result{Bytes: 10}.Throughput())
	assert.InDelta(t, 2.0, Result{Bytes: 4, Elapsed: 2e9}.Throughput(), 1e-9)
}

func TestDrainCountsReadWraps(t *testing.T) {
	t.Parallel()

	// Both buffers hold 4 bytes starting 2 before the end of the store.
	r := &run{
		direct:    rb.FromStoreWithData([]byte("cd....ab"), 6, 4),
		via:       rb.FromStoreWithData([]byte("cd....ab"), 6, 4),
		scratch:   make([]byte, 4),
		directSum: xxhash.New(),
		viaSum:    xxhash.New(),
	}

	require.NoError(t, r.drain(4))
	assert.Equal(t, 1, r.wraps)
	assert.Equal(t, int64(4), r.read)
	assert.Equal(t, "abcd", string(r.scratch))
	assert.Equal(t, r.directSum.Sum64(), r.viaSum.Sum64())

	// an unwrapped read does not count
	r.direct = rb.FromStoreWithData([]byte("abcd"), 0, 4)
	r.via = rb.FromStoreWithData([]byte("abcd"), 0, 4)
	require.NoError(t, r.drain(2))
	assert.Equal(t, 1, r.wraps)
}
