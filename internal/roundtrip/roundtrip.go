// Package roundtrip drives two ring buffers side by side, one through the
// direct copy operations and one through the callback operations, and checks
// that they stay in lockstep while streaming a deterministic byte sequence.
package roundtrip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	rb "github.com/sushydev/byte_ring_go"
)

var (
	// ErrDiverged means the direct and callback buffers disagreed on a count,
	// tail or length after the same operation.
	ErrDiverged = errors.New("roundtrip: buffers diverged")

	// ErrCorrupted means the bytes read back differ from the bytes written.
	ErrCorrupted = errors.New("roundtrip: stream corrupted")
)

const progressEvery = 1 << 16

// Config controls a run.
type Config struct {
	// Capacity of both ring buffers.
	Capacity int
	// Chunk is the upper bound for a single read or write request.
	Chunk int
	// Total is the number of bytes to stream through each buffer.
	Total int64
	// Seed makes the data and the request sizes reproducible.
	Seed uint64
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("roundtrip: capacity must be positive, got %d", c.Capacity)
	}
	if c.Chunk <= 0 {
		return fmt.Errorf("roundtrip: chunk must be positive, got %d", c.Chunk)
	}
	if c.Total < 0 {
		return fmt.Errorf("roundtrip: total must not be negative, got %d", c.Total)
	}
	return nil
}

// Result summarizes a successful run.
type Result struct {
	Bytes    int64
	Steps    int
	// Wraps counts operations on the callback buffer whose span crossed the
	// end of the store, writes and reads alike.
	Wraps    int
	Checksum uint64
	Elapsed  time.Duration
}

// Throughput returns bytes per second through a single buffer.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Elapsed.Seconds()
}

// pattern is a seeded byte stream that yields the same sequence no matter how
// the reads are chunked.
type pattern struct {
	rng  *rand.PCG
	word uint64
	left int
}

func newPattern(seed uint64) *pattern {
	return &pattern{rng: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

func (p *pattern) fill(b []byte) {
	for i := range b {
		if p.left == 0 {
			p.word = p.rng.Uint64()
			p.left = 8
		}
		b[i] = byte(p.word)
		p.word >>= 8
		p.left--
	}
}

type run struct {
	cfg Config

	direct *rb.RingBuffer
	via    *rb.RingBuffer

	directSrc *pattern
	viaSrc    *pattern
	scratch   []byte

	directSum *xxhash.Digest
	viaSum    *xxhash.Digest

	written int64
	read    int64
	wraps   int
}

// Run streams cfg.Total bytes through both buffers and verifies them. It
// returns ctx.Err() if ctx is cancelled between steps.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &run{
		cfg:       cfg,
		direct:    rb.New(cfg.Capacity),
		via:       rb.New(cfg.Capacity),
		directSrc: newPattern(cfg.Seed),
		viaSrc:    newPattern(cfg.Seed),
		scratch:   make([]byte, cfg.Chunk),
		directSum: xxhash.New(),
		viaSum:    xxhash.New(),
	}

	logger.Info("roundtrip starting",
		"capacity", humanize.Bytes(uint64(cfg.Capacity)),
		"chunk", humanize.Bytes(uint64(cfg.Chunk)),
		"total", humanize.Bytes(uint64(cfg.Total)),
		"seed", cfg.Seed)

	sizes := rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed))
	start := time.Now()
	steps := 0
	nextProgress := int64(progressEvery)

	for r.read < cfg.Total {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if r.written < cfg.Total {
			request := 1 + sizes.IntN(cfg.Chunk)
			request = int(min(int64(request), cfg.Total-r.written))
			if err := r.write(request); err != nil {
				return Result{}, err
			}
		}

		if err := r.drain(1 + sizes.IntN(cfg.Chunk)); err != nil {
			return Result{}, err
		}
		steps++

		if r.read >= nextProgress {
			logger.Debug("roundtrip progress",
				"read", humanize.Bytes(uint64(r.read)),
				"buffered", r.direct.GetLength(),
				"wraps", r.wraps)
			nextProgress += progressEvery
		}
	}

	if err := r.verify(); err != nil {
		return Result{}, err
	}

	result := Result{
		Bytes:    r.read,
		Steps:    steps,
		Wraps:    r.wraps,
		Checksum: r.directSum.Sum64(),
		Elapsed:  time.Since(start),
	}

	logger.Info("roundtrip finished",
		"bytes", humanize.Bytes(uint64(result.Bytes)),
		"steps", result.Steps,
		"wraps", result.Wraps,
		"checksum", fmt.Sprintf("%016x", result.Checksum),
		"elapsed", result.Elapsed)

	return result, nil
}

func (r *run) write(request int) error {
	r.directSrc.fill(r.scratch[:min(request, r.direct.GetFreeSpace())])

	n1, err := r.direct.Write(r.scratch, 0, request)
	if err != nil {
		return err
	}

	calls := 0
	n2 := r.via.WriteVia(rb.StoreWriterFunc(func(store []byte, offset, length int) {
		calls++
		r.viaSrc.fill(store[offset : offset+length])
	}), request)

	if calls == 2 {
		r.wraps++
	}
	r.written += int64(n1)

	return r.compare("write", n1, n2)
}

// request never exceeds cfg.Chunk, the size of scratch.
func (r *run) drain(request int) error {
	n1, err := r.direct.Read(r.scratch, 0, request)
	if err != nil {
		return err
	}
	r.directSum.Write(r.scratch[:n1])

	calls := 0
	n2 := r.via.ReadVia(rb.StoreReaderFunc(func(store []byte, offset, length int) {
		calls++
		r.viaSum.Write(store[offset : offset+length])
	}), request)

	if calls == 2 {
		r.wraps++
	}
	r.read += int64(n1)

	return r.compare("read", n1, n2)
}

func (r *run) compare(op string, n1, n2 int) error {
	if n1 != n2 || r.direct.GetTail() != r.via.GetTail() || r.direct.GetLength() != r.via.GetLength() {
		return fmt.Errorf("%w: %s at byte %d: direct n=%d tail=%d length=%d, callback n=%d tail=%d length=%d",
			ErrDiverged, op, r.read, n1, r.direct.GetTail(), r.direct.GetLength(),
			n2, r.via.GetTail(), r.via.GetLength())
	}
	return nil
}

// verify regenerates the input stream and checks both output hashes against it.
func (r *run) verify() error {
	want := xxhash.New()
	src := newPattern(r.cfg.Seed)
	chunk := make([]byte, r.cfg.Chunk)

	for remaining := r.read; remaining > 0; {
		n := int(min(remaining, int64(len(chunk))))
		src.fill(chunk[:n])
		want.Write(chunk[:n])
		remaining -= int64(n)
	}

	if got := r.directSum.Sum64(); got != want.Sum64() {
		return fmt.Errorf("%w: direct checksum %016x, want %016x", ErrCorrupted, got, want.Sum64())
	}
	if got := r.viaSum.Sum64(); got != want.Sum64() {
		return fmt.Errorf("%w: callback checksum %016x, want %016x", ErrCorrupted, got, want.Sum64())
	}
	return nil
}
