package adjust

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// Artifact is an encoded export.
type Artifact struct {
	Data   []byte
	Format EncodeFormat
	Width  int
	Height int
}

// Exporter renders the full-resolution tier and encodes the result.
type Exporter struct {
	renderer Renderer
	encoders []Encoder
}

// NewExporter creates an exporter that renders with r.
func NewExporter(r Renderer, opts ...ExporterOption) *Exporter {
	cfg := defaultExporterOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.encoders == nil {
		cfg.encoders = DefaultEncoders(cfg.jpegQuality)
	}
	return &Exporter{renderer: r, encoders: cfg.encoders}
}

// Export renders base at full resolution with state and encodes it.
func (e *Exporter) Export(ctx context.Context, base *BaseImage, state EditState) (Artifact, error) {
	if base == nil {
		return Artifact{}, formatErrorf("nil base image")
	}
	out, err := e.renderer.Render(ctx, base.Full(), state, base.Scale(TierFull))
	if err != nil {
		return Artifact{}, fmt.Errorf("adjust: export render: %w", err)
	}
	return e.Encode(out)
}

// Encode tries each encoder in order and returns the first success. Every
// attempt writes to its own buffer, so a failed attempt leaves nothing
// behind. If all fail the error is an *EncodeError.
func (e *Exporter) Encode(b *Bitmap) (Artifact, error) {
	if err := b.Validate(); err != nil {
		return Artifact{}, err
	}

	var errs []error
	for _, enc := range e.encoders {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, b); err != nil {
			Logger().Warn("adjust: encoder failed, trying next", "format", enc.Format(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", enc.Format(), err))
			continue
		}
		Logger().Info("adjust: exported", "format", enc.Format(), "bytes", buf.Len())
		return Artifact{
			Data:   buf.Bytes(),
			Format: enc.Format(),
			Width:  b.width,
			Height: b.height,
		}, nil
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no encoders configured"))
	}
	return Artifact{}, &EncodeError{Err: errors.Join(errs...)}
}
