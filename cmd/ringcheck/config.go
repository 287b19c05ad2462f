package main

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/sushydev/byte_ring_go/internal/roundtrip"
)

// fileConfig is the YAML form of a verify run. Sizes are human readable,
// e.g. "64KiB" or "1GB".
//
//	capacity: 64KiB
//	chunk: 4KiB
//	total: 256MiB
//	seed: 7
type fileConfig struct {
	Capacity string  `yaml:"capacity"`
	Chunk    string  `yaml:"chunk"`
	Total    string  `yaml:"total"`
	Seed     *uint64 `yaml:"seed"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the non-empty file values onto opts, skipping any field the
// user set on the command line.
func (fc *fileConfig) apply(opts *verifyOptions, changed func(string) bool) {
	if fc.Capacity != "" && !changed("capacity") {
		opts.capacity = fc.Capacity
	}
	if fc.Chunk != "" && !changed("chunk") {
		opts.chunk = fc.Chunk
	}
	if fc.Total != "" && !changed("total") {
		opts.total = fc.Total
	}
	if fc.Seed != nil && !changed("seed") {
		opts.seed = *fc.Seed
	}
}

type verifyOptions struct {
	capacity string
	chunk    string
	total    string
	seed     uint64
}

func parseSize(name, value string, limit uint64) (uint64, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if n > limit {
		return 0, fmt.Errorf("%s %s exceeds %s", name, humanize.Bytes(n), humanize.Bytes(limit))
	}
	return n, nil
}

func (o verifyOptions) config() (roundtrip.Config, error) {
	capacity, err := parseSize("capacity", o.capacity, math.MaxInt32)
	if err != nil {
		return roundtrip.Config{}, err
	}
	chunk, err := parseSize("chunk", o.chunk, math.MaxInt32)
	if err != nil {
		return roundtrip.Config{}, err
	}
	total, err := parseSize("total", o.total, math.MaxInt64)
	if err != nil {
		return roundtrip.Config{}, err
	}

	cfg := roundtrip.Config{
		Capacity: int(capacity),
		Chunk:    int(chunk),
		Total:    int64(total),
		Seed:     o.seed,
	}
	return cfg, cfg.Validate()
}
