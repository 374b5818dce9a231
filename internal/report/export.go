package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"tserr/internal/scan"
)

// Export writes the analysis as JSON to path. A ".zst" suffix selects
// zstd compression of the JSON payload.
func Export(path string, analysis *scan.Analysis) error {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, analysis, true); err != nil {
		return err
	}

	data := buf.Bytes()
	if strings.HasSuffix(path, ".zst") {
		compressed, err := compress(data)
		if err != nil {
			return err
		}
		data = compressed
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ReadExport loads a previously exported analysis, transparently
// decompressing ".zst" files.
func ReadExport(path string) (*scan.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			return nil, err
		}
	}

	var analysis scan.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &analysis, nil
}

func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}
