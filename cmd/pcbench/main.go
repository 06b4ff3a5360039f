// Command pcbench measures producer/consumer scaling on the bounded queue.
//
// It drains the same number of items with one producer and one consumer,
// then with 2, 4, 8, ... of each, and prints how long each run took.
// Optionally it archives a queue snapshot and verifies the round trip.
//
// Usage:
//
//	go run ./cmd/pcbench -n 1000 -capacity 10 -max 8
//	go run ./cmd/pcbench -config run.json -archive /tmp/q.xml -format structured
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/go-bounded-queue/internal/archive"
	"github.com/randomizedcoder/go-bounded-queue/internal/config"
	"github.com/randomizedcoder/go-bounded-queue/internal/harness"
	"github.com/randomizedcoder/go-bounded-queue/internal/queue"
	"github.com/randomizedcoder/go-bounded-queue/internal/tick"
)

// sink keeps the simulated consumer work from being optimized away. Every
// consumer writes it.
var sink atomic.Uint64

func main() {
	configPath := flag.String("config", "", "JSON config file")
	items := flag.Int("n", 0, "total items per run (default from config)")
	capacity := flag.Int("capacity", 0, "queue capacity (default from config)")
	maxWorkers := flag.Int("max", 0, "max producers = consumers (default from config)")
	cycles := flag.Int("cycles", 0, "number of sweeps (default from config)")
	archivePath := flag.String("archive", "", "archive a queue snapshot to this file")
	format := flag.String("format", "", "archive format: binary, text, structured")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	harness.SetLogger(logger)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			logger.Error("load config", "err", err)
			os.Exit(1)
		}
	}
	override(&cfg.Items, *items)
	override(&cfg.Capacity, *capacity)
	override(&cfg.MaxWorkers, *maxWorkers)
	override(&cfg.Cycles, *cycles)
	if *archivePath != "" {
		cfg.ArchivePath = *archivePath
	}
	if *format != "" {
		f, err := archive.ParseFormat(*format)
		if err != nil {
			logger.Error("parse format", "err", err)
			os.Exit(2)
		}
		cfg.ArchiveFormat = f
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Benchmarking producer/consumer (%d items, capacity=%d, max workers=%d)\n",
		cfg.Items, cfg.Capacity, cfg.MaxWorkers)
	fmt.Println("─────────────────────────────────────────────────────────")

	for c := 0; c < cfg.Cycles; c++ {
		fmt.Printf("\ncycle: %d\n", c)
		if err := sweep(ctx, cfg, logger); err != nil {
			logger.Error("sweep", "cycle", c, "err", err)
			os.Exit(1)
		}
	}

	if cfg.ArchivePath != "" {
		if err := roundTrip(cfg); err != nil {
			logger.Error("archive round trip", "err", err)
			os.Exit(1)
		}
	}
}

func override(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// sweep runs the single-worker baseline, then doubles the worker count up
// to cfg.MaxWorkers.
func sweep(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	single, err := run(ctx, cfg, logger, 1)
	if err != nil {
		return err
	}
	fmt.Printf("  baseline 1|1:        %v\n", single)

	for n := 2; n <= cfg.MaxWorkers; n *= 2 {
		multiple, err := run(ctx, cfg, logger, n)
		if err != nil {
			return err
		}
		fmt.Printf("  producers|consumers %d|%d: %v (%.2fx)\n",
			n, n, multiple, float64(single)/float64(multiple))
	}
	return nil
}

// run drains cfg.Items through n producers and n consumers and checks the
// queue ends empty.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, n int) (time.Duration, error) {
	inputs := makeData(harness.Split(cfg.Items, n))
	remaining := harness.NewCounter(int64(cfg.Items))

	h := harness.New(
		harness.SliceProducer(inputs), n,
		harness.DrainConsumer(remaining, work(cfg.Work)), n,
		harness.DrainCoordinator[uint64](remaining, time.Duration(cfg.PollInterval)),
		harness.WithCapacity(cfg.Capacity),
		harness.WithLogger(logger.With("workers", n)),
		harness.WithProgress(tick.NewAtomicTicker(time.Duration(cfg.ProgressInterval))),
	)
	defer h.Close()

	start := time.Now()
	if err := h.Run(ctx); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	if failures := h.Failures(); len(failures) > 0 {
		return elapsed, fmt.Errorf("%d worker failures, first: %w", len(failures), failures[0])
	}
	if !h.Queue().Empty() || remaining.Load() != 0 {
		return elapsed, errors.New("queue not drained")
	}
	return elapsed, nil
}

// makeData builds one input slice per producer: element i is i*13.
func makeData(ranges []int) [][]uint64 {
	data := make([][]uint64, len(ranges))
	for p, n := range ranges {
		data[p] = make([]uint64, n)
		for i := range data[p] {
			data[p][i] = uint64(i) * 13
		}
	}
	return data
}

// work simulates a consumer's per-item cost by generating size values.
func work(size int) func(uint64) error {
	return func(v uint64) error {
		buf := make([]uint64, 0, size)
		for i := 0; i < size; i++ {
			buf = append(buf, uint64(i)+v)
		}
		if len(buf) > 0 {
			sink.Store(buf[len(buf)-1])
		}
		return nil
	}
}

// roundTrip archives a full queue and checks that the restored copy is
// equal to it.
func roundTrip(cfg *config.Config) error {
	q := queue.New[uint64](cfg.Capacity)
	for i := 0; !q.Full(); i++ {
		q.Push(uint64(i) * 13)
	}

	if err := archive.Save(cfg.ArchivePath, cfg.ArchiveFormat, q.Snapshot()); err != nil {
		return err
	}
	items, err := archive.Load[uint64](cfg.ArchivePath, cfg.ArchiveFormat)
	if err != nil {
		return err
	}
	restored, err := queue.From(cfg.Capacity, items)
	if err != nil {
		return err
	}
	if !queue.Equal(q, restored) {
		return fmt.Errorf("restored %v, want %v", restored.Snapshot(), q.Snapshot())
	}

	fmt.Printf("\nArchive round trip (%s, %s): %d items OK\n", cfg.ArchiveFormat, cfg.ArchivePath, len(items))
	return nil
}
