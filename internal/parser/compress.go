package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decompress unwraps .gz and .zst content and strips the suffix from name
// so the inner extension picks the parser.
func decompress(name string, content []byte) (string, []byte, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return "", nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return "", nil, fmt.Errorf("read gzip: %w", err)
		}
		return name[:len(name)-len(".gz")], out, nil
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return "", nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(content, nil)
		if err != nil {
			return "", nil, fmt.Errorf("read zstd: %w", err)
		}
		return name[:len(name)-len(".zst")], out, nil
	}
	return name, content, nil
}
