package archive

import (
	"fmt"
	"strings"
)

// Format selects an archive encoding at run time.
type Format uint8

const (
	// Binary is compact MessagePack.
	Binary Format = iota
	// Text is human-readable YAML.
	Text
	// Structured is tagged XML: <queue count="n"><item>...</item></queue>.
	Structured
)

var formatNames = [...]string{
	Binary:     "binary",
	Text:       "text",
	Structured: "structured",
}

func (f Format) String() string {
	if f.valid() {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

func (f Format) valid() bool {
	return int(f) < len(formatNames)
}

// Ext returns the conventional file extension for f.
func (f Format) Ext() string {
	switch f {
	case Binary:
		return ".bin"
	case Text:
		return ".yaml"
	case Structured:
		return ".xml"
	default:
		return ""
	}
}

// ParseFormat accepts a format name, case-insensitively. "bin", "txt" and
// "xml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin", "msgpack":
		return Binary, nil
	case "text", "txt", "yaml":
		return Text, nil
	case "structured", "xml":
		return Structured, nil
	default:
		return 0, fmt.Errorf("archive: unknown format %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("archive: unknown format %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
