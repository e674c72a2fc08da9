package storage

import (
	"bytes"
	"fmt"
	"igmetrics/internal/storage/interfaces"

	"github.com/klauspost/compress/zstd"
)

// maxSnapshotMemory bounds the decoded size of a snapshot.
const maxSnapshotMemory = 256 << 20

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// SnapshotCodec compresses profile snapshots with zstd. Snapshots are written
// every few minutes, so the encoder favours ratio over speed.
type SnapshotCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (c *SnapshotCodec) Compress(val []byte) ([]byte, error) {
	return c.encoder.EncodeAll(val, make([]byte, 0, len(val)/4)), nil
}

// Decompress also accepts a plain JSON snapshot, so a hand-written seed file
// can be dropped in place of the compressed one.
func (c *SnapshotCodec) Decompress(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		if trimmed := bytes.TrimSpace(val); len(trimmed) > 0 && trimmed[0] == '{' {
			return trimmed, nil
		}
	}
	out, err := c.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return out, nil
}

func (c *SnapshotCodec) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxSnapshotMemory),
	)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &SnapshotCodec{encoder: encoder, decoder: decoder}, nil
}
