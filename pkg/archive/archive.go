package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel is the default compression level for backups.
const DefaultCompressionLevel = zstd.BestSpeed

// Backup is a decoded backup file.
type Backup struct {
	Name string
	Data []byte
}

type options struct {
	level int
}

// Option configures Write and Store.
type Option func(*options)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

func newOptions(opts []Option) options {
	o := options{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write compresses data and writes it to dst as a backup of name.
func Write(dst io.Writer, name string, data []byte, opts ...Option) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("archive: name of %d bytes is too long", len(name))
	}
	o := newOptions(opts)

	compressed, err := zstd.CompressLevel(nil, data, o.level)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	header := NewHeader(name, uint64(len(data)), uint64(len(compressed)))
	buf := make([]byte, HeaderSize, HeaderSize+len(name)+len(compressed))
	header.EncodeTo(buf)
	buf = append(buf, name...)
	buf = append(buf, compressed...)

	if _, err := dst.Write(buf); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Read decodes a backup from r.
func Read(r io.Reader) (*Backup, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return Decode(raw)
}

// Decode decodes a backup held in memory.
func Decode(raw []byte) (*Backup, error) {
	var h Header
	if err := h.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	nameEnd := HeaderSize + int(h.NameLength)
	if uint64(len(raw)) != uint64(nameEnd)+h.CompressedLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalid, uint64(nameEnd)+h.CompressedLength, len(raw))
	}

	b := &Backup{Name: string(raw[HeaderSize:nameEnd])}
	if h.Length == 0 {
		b.Data = []byte{}
		return b, nil
	}

	data, err := zstd.Decompress(nil, raw[nameEnd:])
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrInvalid, err)
	}
	if uint64(len(data)) != h.Length {
		return nil, fmt.Errorf("%w: expected %d bytes of data, got %d", ErrInvalid, h.Length, len(data))
	}
	b.Data = data
	return b, nil
}

// Encode returns the backup of name and data as bytes.
func Encode(name string, data []byte, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, name, data, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
