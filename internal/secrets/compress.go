package secrets

import (
	"fmt"

	kerrors "github.com/PolarWolf314/gitseal/internal/errors"
	"github.com/klauspost/compress/zstd"
)

// DefaultZstdLevel is the zstd level used when the config does not set one.
const DefaultZstdLevel = 15

// Compressor wraps a zstd encoder and decoder shared by all workers of a run.
type Compressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCompressor creates a Compressor at the given zstd level (1-22).
func NewCompressor(level int) (*Compressor, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("zstd level must be between 1 and 22, got %d", level)
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Compressor{enc: enc, dec: dec}, nil
}

// Compress returns the zstd frame for data.
func (c *Compressor) Compress(data []byte) []byte {
	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress inverts Compress. A corrupted frame wraps ErrCompression.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCompression, err)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (c *Compressor) Close() {
	_ = c.enc.Close()
	c.dec.Close()
}
