package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// MaxImageDim is the largest width or height, in pixels, handed to the
// recognition engine. Tesseract degrades and slows badly on oversized
// renders, so anything larger is scaled down first.
const MaxImageDim = 4000

// PrepareImage decodes an encoded page image (PNG or JPEG) and downsamples
// it when either dimension exceeds maxDim, preserving aspect ratio. The
// returned bytes are always PNG. Images already within bounds are returned
// unchanged.
func PrepareImage(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = MaxImageDim
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	scale := float64(maxDim) / float64(cfg.Width)
	if cfg.Height > cfg.Width {
		scale = float64(maxDim) / float64(cfg.Height)
	}
	w := int(float64(cfg.Width) * scale)
	h := int(float64(cfg.Height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding downsampled image: %w", err)
	}
	return buf.Bytes(), nil
}
