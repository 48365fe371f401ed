package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"
	"unsafe"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/veslink/distmat"
	"github.com/veslink/distmat/codec"
	"github.com/veslink/distmat/distance"
	"github.com/veslink/distmat/resource"
)

// SnapshotOptions controls how a matrix snapshot is written. On load
// only Logger is consulted: the format is self-describing, so
// Compression and Codec are read from the file.
type SnapshotOptions struct {
	// Compression selects the payload compression scheme.
	Compression Compression

	// Codec encodes the metadata block. Defaults to codec.Default.
	Codec codec.Codec

	// Controller, if set, throttles snapshot writes against its IO
	// rate limit.
	Controller *resource.Controller

	// Logger, if set, records snapshot saves and loads.
	Logger *distmat.Logger
}

func (o SnapshotOptions) logSnapshot(ctx context.Context, name string, err error) {
	if o.Logger == nil {
		return
	}
	o.Logger.LogSnapshot(ctx, name, err)
}

// snapshotMeta is the codec-encoded metadata block. The metric is
// recorded by name so the format survives enum reordering.
type snapshotMeta struct {
	Metric    string    `json:"metric"`
	CreatedAt time.Time `json:"created_at"`
}

// Save writes m as a self-describing binary snapshot:
//
//	FileHeader | codec name | metadata | payload | CRC32
//
// The codec used for the metadata block is recorded in the file, so
// Load does not depend on the writer and reader agreeing out of band.
func Save(ctx context.Context, w io.Writer, m *distmat.Matrix, opts SnapshotOptions) error {
	if m == nil {
		return fmt.Errorf("persistence: nil matrix")
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	meta, err := opts.Codec.Marshal(snapshotMeta{
		Metric:    m.Metric().String(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("persistence: encode metadata: %w", err)
	}

	payload, err := compressPayload(float32sToBytes(m.Data()), opts.Compression)
	if err != nil {
		return err
	}

	out := w
	if opts.Controller != nil {
		out = opts.Controller.ThrottledWriter(ctx, w)
	}
	cw := NewChecksumWriter(out)

	header := FileHeader{
		Magic:         MagicNumber,
		Version:       Version,
		Compression:   uint8(opts.Compression),
		Rows:          uint64(m.Rows()),
		Dimension:     uint32(m.Dimension()),
		MetaLength:    uint32(len(meta)),
		PayloadLength: uint64(len(payload)),
	}
	if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
		return err
	}

	name := opts.Codec.Name()
	if err := binary.Write(cw, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	if _, err := cw.Write([]byte(name)); err != nil {
		return err
	}

	if _, err := cw.Write(meta); err != nil {
		return err
	}
	if _, err := cw.Write(payload); err != nil {
		return err
	}

	// Trailer carries the checksum of everything before it.
	return binary.Write(out, binary.LittleEndian, cw.Sum())
}

// Load reads a snapshot written by Save and verifies its checksum.
func Load(r io.Reader) (*distmat.Matrix, error) {
	cr := NewChecksumReader(r)

	var header FileHeader
	if err := binary.Read(cr, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	var nameLen uint16
	if err := binary.Read(cr, binary.LittleEndian, &nameLen); err != nil {
		return nil, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(cr, name); err != nil {
		return nil, err
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("persistence: unknown codec %q", name)
	}

	metaBytes := make([]byte, header.MetaLength)
	if _, err := io.ReadFull(cr, metaBytes); err != nil {
		return nil, err
	}
	var meta snapshotMeta
	if err := c.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("persistence: decode metadata: %w", err)
	}
	metric, err := distance.ParseMetric(meta.Metric)
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}

	payload := make([]byte, header.PayloadLength)
	if _, err := io.ReadFull(cr, payload); err != nil {
		return nil, err
	}

	rows := int(header.Rows)
	data := make([]float32, rows*rows)
	if err := decompressPayload(payload, Compression(header.Compression), float32sToBytes(data)); err != nil {
		return nil, err
	}

	// The trailer is read from the raw reader, not through cr, so it is
	// excluded from its own checksum.
	var expected uint32
	if err := binary.Read(r, binary.LittleEndian, &expected); err != nil {
		return nil, err
	}
	if err := cr.Verify(expected); err != nil {
		return nil, err
	}

	return distmat.RestoreMatrix(rows, int(header.Dimension), metric, data)
}

func compressPayload(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCompression, c)
	}
}

func decompressPayload(payload []byte, c Compression, dst []byte) error {
	switch c {
	case CompressionNone:
		if len(payload) != len(dst) {
			return fmt.Errorf("persistence: payload size mismatch: expected %d, got %d", len(dst), len(payload))
		}
		copy(dst, payload)
		return nil
	case CompressionLZ4:
		zr := lz4.NewReader(bytes.NewReader(payload))
		if _, err := io.ReadFull(zr, dst); err != nil {
			return err
		}
		return expectEOF(zr)
	case CompressionZstd:
		zr, err := zstd.NewReader(bytes.NewReader(payload))
		if err != nil {
			return err
		}
		defer zr.Close()
		if _, err := io.ReadFull(zr, dst); err != nil {
			return err
		}
		return expectEOF(zr)
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidCompression, c)
	}
}

// expectEOF fails when the decompressed payload is larger than the
// matrix it claims to hold.
func expectEOF(r io.Reader) error {
	var scratch [1]byte
	if n, _ := r.Read(scratch[:]); n != 0 {
		return fmt.Errorf("persistence: trailing payload data")
	}
	return nil
}

// float32sToBytes returns a byte view over v without copying.
// The view aliases v; it must not outlive it.
func float32sToBytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
