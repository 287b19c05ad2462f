// Command ringcheck exercises the byte ring buffer end to end.
//
// Usage:
//
//	ringcheck verify --capacity 64KiB --chunk 4KiB --total 256MiB
//	ringcheck verify --config ringcheck.yaml -v
//
// verify streams a seeded byte sequence through two ring buffers, one using
// the direct copy operations and one using the callback operations, and
// fails if they ever disagree or if the bytes read back differ from the
// bytes written.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "ringcheck",
	Short:         "Self-check tool for the byte ring buffer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(newVerifyCmd())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("ringcheck failed", "error", err)
		stop()
		os.Exit(1)
	}
}
