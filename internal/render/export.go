package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"time"
)

// Filename returns the download name of an export made at t, using the UTC
// calendar date: split-bill-2026-10-16.png.
func Filename(t time.Time) string {
	return fmt.Sprintf("split-bill-%s.png", t.UTC().Format(time.DateOnly))
}

// Exporter renders summaries to PNG. Exports are independent of each other and
// hold no lock; there is no retry.
type Exporter struct {
	rasterizer Rasterizer
	now        func() time.Time
}

// NewExporter creates an exporter using the given rasterizer.
func NewExporter(r Rasterizer) *Exporter {
	return &Exporter{rasterizer: r, now: time.Now}
}

// Export rasterizes s and writes the PNG to w, returning the file name. The
// image is encoded in memory first, so nothing is written to w when
// rasterizing or encoding fails.
func (e *Exporter) Export(ctx context.Context, s Summary, w io.Writer) (string, error) {
	img, err := e.rasterizer.Rasterize(ctx, s)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize summary: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}

	filename := Filename(e.now())
	if _, err := buf.WriteTo(w); err != nil {
		return "", fmt.Errorf("failed to write png: %w", err)
	}
	return filename, nil
}
