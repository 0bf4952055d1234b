// Package archive stores zstd-compressed backups of texture files.
//
// A backup file is a fixed header, the original file name and the zstd
// frame holding the original bytes.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic bytes identifying a backup header.
var Magic = [4]byte{'T', 'X', 'B', 'K'}

// Version is the current header version.
const Version = 1

// HeaderSize is the fixed binary size of a backup header.
const HeaderSize = 24 // 4 + 2 + 2 + 8 + 8 bytes

// MaxNameLength is the longest file name a header can describe.
const MaxNameLength = 0xffff

// ErrInvalid is returned for data that is not a backup.
var ErrInvalid = errors.New("archive: invalid backup")

// Header describes one backup.
type Header struct {
	Magic            [4]byte
	Version          uint16
	NameLength       uint16
	Length           uint64 // original size
	CompressedLength uint64
}

// NewHeader creates a header for a backup of name.
func NewHeader(name string, length, compressedLength uint64) *Header {
	return &Header{
		Magic:            Magic,
		Version:          Version,
		NameLength:       uint16(len(name)),
		Length:           length,
		CompressedLength: compressedLength,
	}
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: magic %q", ErrInvalid, h.Magic[:])
	}
	if h.Version != Version {
		return fmt.Errorf("%w: version %d", ErrInvalid, h.Version)
	}
	if h.Length > 0 && h.CompressedLength == 0 {
		return fmt.Errorf("%w: compressed size is zero", ErrInvalid)
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.NameLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrInvalid, HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.NameLength = binary.LittleEndian.Uint16(buf[6:8])
	h.Length = binary.LittleEndian.Uint64(buf[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[16:24])
}
