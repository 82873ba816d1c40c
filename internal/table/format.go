package table

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies an on-disk table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Compression identifies an optional outer stream codec.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// DetectFormat inspects the file name: a trailing .gz or .zst selects the
// stream codec, the remaining extension selects the table format.
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	comp := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		comp = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		comp = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	}
	switch filepath.Ext(name) {
	case ".csv", ".txt":
		return FormatCSV, comp, nil
	case ".tsv", ".tab":
		return FormatTSV, comp, nil
	case ".xlsx":
		return FormatXLSX, comp, nil
	case "":
		return FormatCSV, comp, nil
	default:
		return "", comp, fmt.Errorf("unsupported table format: %s", filepath.Ext(name))
	}
}

func (f Format) delimiter() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

func decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return zw, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
