package persistence

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MagicNumber identifies distmat snapshot files (ASCII: "DMAT")
	MagicNumber = 0x444D4154
	// Version is the current file format version (v1.0.0)
	Version = 0x00010000

	// maxMetaLength bounds the metadata block. Real metadata is tens of
	// bytes; anything near this limit is a corrupt header.
	maxMetaLength = 1 << 20

	// maxCompressionOverhead bounds how much lz4/zstd framing may add to
	// an incompressible payload.
	maxCompressionOverhead = 1 << 20
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidCompression = errors.New("invalid compression")
	ErrCorruptHeader      = errors.New("corrupt header")
)

// Compression selects the payload compression scheme.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// FileHeader is the fixed-size header at the start of every snapshot.
// All multi-byte fields are little-endian.
type FileHeader struct {
	Magic         uint32 // 0x444D4154 ("DMAT")
	Version       uint32 // File format version
	Compression   uint8  // 0=none, 1=lz4, 2=zstd
	Padding       [3]byte
	Rows          uint64 // Matrix dimension (rows == columns)
	Dimension     uint32 // Dimensionality of the source vectors
	MetaLength    uint32 // Length of the encoded metadata block
	PayloadLength uint64 // Length of the (possibly compressed) payload
	Reserved      [8]byte
}

func (h *FileHeader) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	if Compression(h.Compression) > CompressionZstd {
		return fmt.Errorf("%w: got %d", ErrInvalidCompression, h.Compression)
	}

	// Size fields are not covered by the checksum until after they have
	// been used to allocate; reject impossible values here so a corrupt
	// header errors instead of panicking or exhausting memory.
	if h.Rows != 0 && h.Rows > uint64(math.MaxInt/4)/h.Rows {
		return fmt.Errorf("%w: row count %d", ErrCorruptHeader, h.Rows)
	}
	if h.MetaLength > maxMetaLength {
		return fmt.Errorf("%w: metadata length %d", ErrCorruptHeader, h.MetaLength)
	}
	if h.PayloadLength > 4*h.Rows*h.Rows+maxCompressionOverhead {
		return fmt.Errorf("%w: payload length %d", ErrCorruptHeader, h.PayloadLength)
	}
	return nil
}
