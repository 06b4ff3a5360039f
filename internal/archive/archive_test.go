package archive_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randomizedcoder/go-bounded-queue/internal/archive"
	"github.com/randomizedcoder/go-bounded-queue/internal/queue"
)

var allFormats = []archive.Format{archive.Binary, archive.Text, archive.Structured}

// TestRoundTrip_Queue archives [1, 3, 6, 12] in every format, restores it
// into a new queue, and pops both queues in lockstep.
func TestRoundTrip_Queue(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			q := queue.New[int](10)
			for _, v := range []int{1, 3, 6, 12} {
				q.Push(v)
			}

			path := filepath.Join(t.TempDir(), "qarchive"+format.Ext())
			if err := archive.Save(path, format, q.Snapshot()); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if q.Empty() {
				t.Fatal("Save must not drain the queue")
			}

			items, err := archive.Load[int](path, format)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			restored, err := queue.From(q.Cap(), items)
			if err != nil {
				t.Fatalf("From: %v", err)
			}

			if !queue.Equal(q, restored) {
				t.Fatalf("restored queue %v differs from %v", restored.Snapshot(), q.Snapshot())
			}
			for _, want := range []int{1, 3, 6, 12} {
				a, _ := q.Pop()
				b, _ := restored.Pop()
				if a != want || b != want {
					t.Errorf("expected %d from both queues, got %d and %d", want, a, b)
				}
			}
		})
	}
}

type pair struct {
	Key   string `msgpack:"key" yaml:"key" xml:"key"`
	Value uint64 `msgpack:"value" yaml:"value" xml:"value"`
}

func TestRoundTrip_Structs(t *testing.T) {
	items := []pair{{"a", 1}, {"b", 1 << 40}, {"", 0}}

	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := archive.Encode(&buf, format, items); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := archive.Decode[pair](&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != len(items) {
				t.Fatalf("expected %v, got %v", items, got)
			}
			for i := range items {
				if got[i] != items[i] {
					t.Errorf("item %d: expected %v, got %v", i, items[i], got[i])
				}
			}
		})
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := archive.Encode(&buf, format, []int{}); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := archive.Decode[int](&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no items, got %v", got)
			}
		})
	}
}

func TestStructured_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := archive.Encode(&buf, archive.Structured, []int{1, 3}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`<queue count="2">`, "<item>1</item>", "<item>3</item>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestDecode_CountMismatch(t *testing.T) {
	doc := "count: 3\nitems:\n  - 1\n"
	if _, err := archive.Decode[int](strings.NewReader(doc), archive.Text); err == nil {
		t.Error("expected an error for a count mismatch")
	}
}

func TestPathErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope", "qarchive.txt")

	testCases := []struct {
		name string
		op   func() error
		want error
	}{
		{"load missing file", func() error {
			_, err := archive.Load[int](filepath.Join(dir, "absent.yaml"), archive.Text)
			return err
		}, archive.ErrNotExist},
		{"save missing dir", func() error {
			return archive.Save(missing, archive.Text, []int{1})
		}, archive.ErrNotExist},
		{"save no file name", func() error {
			return archive.Save(dir+string(filepath.Separator), archive.Text, []int{1})
		}, archive.ErrNoFileName},
		{"save empty path", func() error {
			return archive.Save("", archive.Binary, []int{1})
		}, archive.ErrNoFileName},
		{"save directory", func() error {
			return archive.Save(dir, archive.Structured, []int{1})
		}, archive.ErrIsDirectory},
		{"load directory", func() error {
			_, err := archive.Load[int](dir, archive.Binary)
			return err
		}, archive.ErrIsDirectory},
		{"unknown format", func() error {
			return archive.Save(filepath.Join(dir, "x"), archive.Format(9), []int{1})
		}, archive.ErrUnknownFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var aerr *archive.Error
			if !errors.As(err, &aerr) {
				t.Fatalf("expected *archive.Error, got %T", err)
			}
		})
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xml")
	if err := os.WriteFile(path, []byte("<queue count=\"1\"><item>x"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := archive.Load[int](path, archive.Structured)
	var aerr *archive.Error
	if !errors.As(err, &aerr) || aerr.Op != "load" {
		t.Fatalf("expected load *archive.Error, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in   string
		want archive.Format
	}{
		{"binary", archive.Binary},
		{"BIN", archive.Binary},
		{"text", archive.Text},
		{"txt", archive.Text},
		{"structured", archive.Structured},
		{" xml ", archive.Structured},
	}
	for _, tc := range testCases {
		got, err := archive.ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := archive.ParseFormat("json"); err == nil {
		t.Error("expected error for unknown format")
	}

	var f archive.Format
	if err := f.UnmarshalText([]byte("structured")); err != nil || f != archive.Structured {
		t.Errorf("UnmarshalText: %v, %v", f, err)
	}
	if b, err := archive.Text.MarshalText(); err != nil || string(b) != "text" {
		t.Errorf("MarshalText: %q, %v", b, err)
	}
}
