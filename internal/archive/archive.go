// Package archive saves and restores a queue's element sequence.
//
// The archive holds a snapshot, head first, in one of three formats chosen
// at run time. It is meant for an idle queue: take queue.Snapshot() before
// Save and rebuild with queue.From after Load.
package archive

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotExist is returned for a path whose file (on Load) or parent
	// directory (on Save) does not exist.
	ErrNotExist = errors.New("nonexistent path")
	// ErrNoFileName is returned for a path with no file name component.
	ErrNoFileName = errors.New("path does not contain a file name")
	// ErrIsDirectory is returned for a path that names a directory.
	ErrIsDirectory = errors.New("path refers to a directory, not a file")
	// ErrUnknownFormat is returned for a Format outside the defined set.
	ErrUnknownFormat = errors.New("unknown format")
)

// Error describes a failed archive operation.
type Error struct {
	Op     string
	Path   string
	Format Format
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("archive: %s %s: %v", e.Op, e.Format, e.Err)
	}
	return fmt.Sprintf("archive: %s %s %q: %v", e.Op, e.Format, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Save writes items to path in the given format, creating or truncating
// the file. The parent directory must exist.
func Save[T any](path string, format Format, items []T) error {
	if !format.valid() {
		return &Error{Op: "save", Path: path, Format: format, Err: ErrUnknownFormat}
	}
	if err := checkPath(path, false); err != nil {
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}

	w := bufio.NewWriter(f)
	if err := encode(w, format, items); err != nil {
		f.Close()
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}
	if err := f.Close(); err != nil {
		return &Error{Op: "save", Path: path, Format: format, Err: err}
	}
	return nil
}

// Load reads items previously written by Save.
func Load[T any](path string, format Format) ([]T, error) {
	if err := checkPath(path, true); err != nil {
		return nil, &Error{Op: "load", Path: path, Format: format, Err: err}
	}
	f, err := os.Open(path) // #nosec G304 – caller-provided archive path
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Format: format, Err: err}
	}
	defer f.Close()

	items, err := decode[T](bufio.NewReader(f), format)
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Format: format, Err: err}
	}
	return items, nil
}

// Encode writes items to w in the given format.
func Encode[T any](w io.Writer, format Format, items []T) error {
	if err := encode(w, format, items); err != nil {
		return &Error{Op: "encode", Format: format, Err: err}
	}
	return nil
}

// Decode reads items from r in the given format.
func Decode[T any](r io.Reader, format Format) ([]T, error) {
	items, err := decode[T](r, format)
	if err != nil {
		return nil, &Error{Op: "decode", Format: format, Err: err}
	}
	return items, nil
}

// checkPath applies the path rules shared by Save and Load. mustExist is
// set for Load, where the file itself has to be there.
func checkPath(path string, mustExist bool) error {
	if path == "" || strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return ErrNoFileName
	}
	switch base := filepath.Base(path); base {
	case ".", "..", string(filepath.Separator):
		return ErrNoFileName
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return ErrIsDirectory
		}
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return err
	case mustExist:
		return ErrNotExist
	}

	dir, err := os.Stat(filepath.Dir(path))
	if err != nil || !dir.IsDir() {
		return ErrNotExist
	}
	return nil
}

// xmlQueue is the Structured document layout.
type xmlQueue[T any] struct {
	XMLName xml.Name `xml:"queue"`
	Count   int      `xml:"count,attr"`
	Items   []T      `xml:"item"`
}

// textQueue is the Text document layout.
type textQueue[T any] struct {
	Count int `yaml:"count"`
	Items []T `yaml:"items"`
}

func encode[T any](w io.Writer, format Format, items []T) error {
	switch format {
	case Binary:
		return msgpack.NewEncoder(w).Encode(items)
	case Text:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(textQueue[T]{Count: len(items), Items: items}); err != nil {
			return err
		}
		return enc.Close()
	case Structured:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(xmlQueue[T]{Count: len(items), Items: items}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	default:
		return ErrUnknownFormat
	}
}

func decode[T any](r io.Reader, format Format) ([]T, error) {
	switch format {
	case Binary:
		var items []T
		if err := msgpack.NewDecoder(r).Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	case Text:
		var doc textQueue[T]
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
		return checkCount(doc.Count, doc.Items)
	case Structured:
		var doc xmlQueue[T]
		if err := xml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
		return checkCount(doc.Count, doc.Items)
	default:
		return nil, ErrUnknownFormat
	}
}

func checkCount[T any](count int, items []T) ([]T, error) {
	if count != len(items) {
		return nil, fmt.Errorf("count %d does not match %d items", count, len(items))
	}
	return items, nil
}
