// Package config loads the settings for a producer/consumer run.
// Configuration is JSON with safe defaults; every field is optional.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/randomizedcoder/go-bounded-queue/internal/archive"
)

// Duration is a time.Duration that reads and writes as a Go duration
// string ("10ms", "1s") in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds the parameters of one benchmark session.
//
// It is loaded once at startup and then only read.
type Config struct {
	// Items is the total number of elements pushed per run, split across
	// producers.
	Items int `json:"items"`

	// Capacity is the shared queue's capacity.
	Capacity int `json:"capacity"`

	// MaxWorkers caps the number of producers (and of consumers) in the
	// scaling sweep. Defaults to the number of CPUs.
	MaxWorkers int `json:"max_workers"`

	// Cycles repeats the whole sweep.
	Cycles int `json:"cycles"`

	// PollInterval is how often the coordinator re-checks for drain.
	PollInterval Duration `json:"poll_interval"`

	// ProgressInterval throttles progress log lines.
	ProgressInterval Duration `json:"progress_interval"`

	// Work is the simulated per-item consumer cost, as a count of values
	// generated for each popped element.
	Work int `json:"work"`

	// ArchivePath, if set, is where a queue snapshot is written and read
	// back after the sweep.
	ArchivePath string `json:"archive_path"`

	// ArchiveFormat is one of "binary", "text", "structured".
	ArchiveFormat archive.Format `json:"archive_format"`
}

// LoadConfig reads a JSON file at filename on top of DefaultConfig.
// Unknown fields are rejected.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename) // #nosec G304 – filename is caller-provided config path
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", filename, err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %q: %w", filename, err)
	}
	return cfg, nil
}

// DefaultConfig returns a fresh *Config with the defaults: 1000 items, a
// queue of 10, one worker pair per CPU.
func DefaultConfig() *Config {
	return &Config{
		Items:            1000,
		Capacity:         10,
		MaxWorkers:       runtime.NumCPU(),
		Cycles:           1,
		PollInterval:     Duration(10 * time.Millisecond),
		ProgressInterval: Duration(time.Second),
		Work:             100_000,
		ArchiveFormat:    archive.Text,
	}
}

// Validate reports every out-of-range field.
func (c *Config) Validate() error {
	var errs []error
	if c.Items < 0 {
		errs = append(errs, fmt.Errorf("items must be >= 0, got %d", c.Items))
	}
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity must be >= 1, got %d", c.Capacity))
	}
	if c.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("max_workers must be >= 1, got %d", c.MaxWorkers))
	}
	if c.Cycles < 1 {
		errs = append(errs, fmt.Errorf("cycles must be >= 1, got %d", c.Cycles))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %v", time.Duration(c.PollInterval)))
	}
	if c.ProgressInterval <= 0 {
		errs = append(errs, fmt.Errorf("progress_interval must be positive, got %v", time.Duration(c.ProgressInterval)))
	}
	if c.Work < 0 {
		errs = append(errs, fmt.Errorf("work must be >= 0, got %d", c.Work))
	}
	return errors.Join(errs...)
}
