package export

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compressed reports whether path is written zstd-compressed.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdFile) Close() error {
	return errors.Join(z.Encoder.Close(), z.f.Close())
}

// CreateFile creates path for writing. Paths ending in .zst are compressed
// with zstd on the fly.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{Encoder: enc, f: f}, nil
}

type zstdReader struct {
	io.ReadCloser
	f *os.File
}

func (z *zstdReader) Close() error {
	z.ReadCloser.Close()
	return z.f.Close()
}

// OpenFile opens a file written by CreateFile.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReader{ReadCloser: dec.IOReadCloser(), f: f}, nil
}
