package compressor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/semmidev/litedump/internal/domain"
)

var ErrUnknownCompressor = errors.New("unknown compressor")

type GzipCompressor struct{}

func NewGzip() *GzipCompressor {
	return &GzipCompressor{}
}

func (g *GzipCompressor) UseCommand() string {
	return "gzip"
}

func (g *GzipCompressor) Extension() string {
	return ".gz"
}

type Bzip2Compressor struct{}

func NewBzip2() *Bzip2Compressor {
	return &Bzip2Compressor{}
}

func (b *Bzip2Compressor) UseCommand() string {
	return "bzip2"
}

func (b *Bzip2Compressor) Extension() string {
	return ".bz2"
}

// NoneCompressor leaves the dump as plain SQL.
type NoneCompressor struct{}

func NewNone() *NoneCompressor {
	return &NoneCompressor{}
}

func (n *NoneCompressor) UseCommand() string {
	return ""
}

func (n *NoneCompressor) Extension() string {
	return ""
}

// New resolves a compressor by its configuration name.
func New(name string) (domain.Compressor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gzip":
		return NewGzip(), nil
	case "bzip2":
		return NewBzip2(), nil
	case "", "none":
		return NewNone(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompressor, name)
	}
}

// Enabled reports whether c adds a compression stage to the pipeline.
func Enabled(c domain.Compressor) bool {
	return c != nil && c.UseCommand() != ""
}
