package transport

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression is a GELF UDP payload encoding. Graylog detects gzip and zlib
// by their magic bytes, so no framing changes are needed.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZlib Compression = "zlib"
)

// ParseCompression maps a case-insensitive name to a Compression.
// The empty string selects CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(name))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionZlib:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

func (c Compression) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	switch c {
	case "", CompressionNone:
		return data, nil
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
	case CompressionZlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("zlib: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, string(c))
	}

	return buf.Bytes(), nil
}
