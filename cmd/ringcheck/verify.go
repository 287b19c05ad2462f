package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sushydev/byte_ring_go/internal/roundtrip"
)

func newVerifyCmd() *cobra.Command {
	var (
		opts       = verifyOptions{capacity: "64KiB", chunk: "4KiB", total: "64MiB", seed: 1}
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Stream data through direct and callback buffers and compare them",
		Long: `Stream a seeded byte sequence through two ring buffers of the same
capacity. One is driven by Write/Read through a staging slice, the other by
WriteVia/ReadVia directly against its store. Request sizes are random in
[1, chunk] so that truncation and wraparound are both exercised.

Flags override values from --config.

Example config file (ringcheck.yaml):
  capacity: 64KiB
  chunk: 4KiB
  total: 256MiB
  seed: 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fc, err := loadFileConfig(configPath)
				if err != nil {
					return err
				}
				fc.apply(&opts, cmd.Flags().Changed)
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}

			result, err := roundtrip.Run(cmd.Context(), cfg, newLogger())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s in %d steps, %d wraps, checksum %016x, %s/s\n",
				humanize.Bytes(uint64(result.Bytes)), result.Steps, result.Wraps,
				result.Checksum, humanize.Bytes(uint64(result.Throughput())))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.capacity, "capacity", opts.capacity, "Ring buffer capacity")
	cmd.Flags().StringVar(&opts.chunk, "chunk", opts.chunk, "Largest single read or write request")
	cmd.Flags().StringVar(&opts.total, "total", opts.total, "Bytes to stream through each buffer")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "Seed for data and request sizes")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	return cmd
}
