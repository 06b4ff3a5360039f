package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/randomizedcoder/go-bounded-queue/internal/archive"
	"github.com/randomizedcoder/go-bounded-queue/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Items = 500
	cfg.Capacity = 4
	cfg.MaxWorkers = 4
	cfg.Work = 64
	cfg.PollInterval = config.Duration(time.Millisecond)
	return cfg
}

func TestMakeData(t *testing.T) {
	data := makeData([]int{2, 3})
	if len(data) != 2 || len(data[0]) != 2 || len(data[1]) != 3 {
		t.Fatalf("unexpected shape: %v", data)
	}
	for _, in := range data {
		for i, v := range in {
			if v != uint64(i)*13 {
				t.Errorf("element %d: expected %d, got %d", i, i*13, v)
			}
		}
	}
}

// TestRun drains the configured items with concurrent consumers all running
// the simulated work. Run with: go test -race ./cmd/pcbench
func TestRun(t *testing.T) {
	for _, n := range []int{1, 4} {
		t.Run(fmt.Sprintf("N%d", n), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			elapsed, err := run(ctx, smallConfig(), quietLogger(), n)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if elapsed <= 0 {
				t.Errorf("expected positive duration, got %v", elapsed)
			}
		})
	}
}

func TestSweep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sweep(ctx, smallConfig(), quietLogger()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []archive.Format{archive.Binary, archive.Text, archive.Structured} {
		t.Run(f.String(), func(t *testing.T) {
			cfg := smallConfig()
			cfg.ArchivePath = filepath.Join(t.TempDir(), "queue"+f.Ext())
			cfg.ArchiveFormat = f

			if err := roundTrip(cfg); err != nil {
				t.Fatalf("roundTrip: %v", err)
			}
		})
	}
}

func TestRoundTrip_BadPath(t *testing.T) {
	cfg := smallConfig()
	cfg.ArchivePath = t.TempDir()

	if err := roundTrip(cfg); err == nil {
		t.Fatal("expected an error archiving to a directory")
	}
}
