package logsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// File reads a log previously captured with `docker logs`, e.g. for
// replaying a run. Files ending in .zst are decompressed on the fly.
type File struct {
	Path string
}

var _ Source = (*File)(nil)

// Fetch ignores name; the path identifies the log.
func (f *File) Fetch(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	inFile, err := os.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", ErrLogsUnavailable, f.Path, err)
	}
	defer inFile.Close()

	var r io.Reader = inFile
	if strings.HasSuffix(f.Path, ".zst") {
		dec, err := zstd.NewReader(inFile)
		if err != nil {
			return "", fmt.Errorf("%w: create Zstandard reader: %v", ErrLogsUnavailable, err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %v", ErrLogsUnavailable, f.Path, err)
	}
	return string(data), nil
}

// CompressZstd writes a zstd-compressed copy of inputPath next to it and
// removes the original, returning the new path.
func CompressZstd(inputPath string) (string, error) {
	outputPath := inputPath + ".zst"

	inFile, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	writer, err := zstd.NewWriter(outFile)
	if err != nil {
		return "", fmt.Errorf("failed to create Zstandard writer: %w", err)
	}
	if _, err := io.Copy(writer, inFile); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to compress file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to flush Zstandard writer: %w", err)
	}

	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("failed to remove original file: %w", err)
	}

	return outputPath, nil
}

// Save writes text to path, creating parent directories as needed.
func Save(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write log file %q: %w", path, err)
	}
	return nil
}
