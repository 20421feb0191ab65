package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// writeCompressed writes a zstd copy of data to path + ".zst".
func writeCompressed(path string, data []byte) error {
	archivePath := path + ".zst"
	dst, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create compressed file: %w", err)
	}
	defer dst.Close()

	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	if _, err := io.Copy(enc, bytes.NewReader(data)); err != nil {
		if closeErr := enc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close encoder during error cleanup")
		}
		os.Remove(archivePath)
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := enc.Close(); err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("failed to close encoder: %w", err)
	}

	return dst.Close()
}
