package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
)

// DefaultRSVGConvert is the converter binary looked up on PATH.
const DefaultRSVGConvert = "rsvg-convert"

// RSVGConverter converts SVG documents with librsvg's rsvg-convert.
type RSVGConverter struct {
	path string
}

// NewRSVGConverter creates a converter running the binary at path, or
// rsvg-convert from PATH when path is empty.
func NewRSVGConverter(path string) *RSVGConverter {
	if path == "" {
		path = DefaultRSVGConvert
	}
	return &RSVGConverter{path: path}
}

// Available reports whether the converter binary can be found.
func (c *RSVGConverter) Available() bool {
	_, err := exec.LookPath(c.path)
	return err == nil
}

// ToPDF converts SVG bytes to a PDF page of the same size.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func (c *RSVGConverter) ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return c.convert(ctx, svg, "pdf", "-d", "72", "-p", "72")
}

func (c *RSVGConverter) convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !c.Available() {
		return nil, apperrors.New(apperrors.ErrCodeRenderBackend,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRenderBackend,
			fmt.Errorf("%v: %s", err, errBuf.String()), "rsvg-convert failed")
	}
	return out.Bytes(), nil
}
