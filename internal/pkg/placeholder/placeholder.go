// Package placeholder derives low-resolution previews from image bytes.
package placeholder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/buckket/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge of the box previews are fitted into.
const DefaultSize = 64

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("placeholder: empty image data")

// Result describes a decoded image and its preview.
type Result struct {
	Width    int
	Height   int
	Format   string
	DataURI  string
	BlurHash string
}

// Options tweak Generate.
type Options struct {
	// Size is the bounding box edge of the preview, DefaultSize when <= 0.
	Size int
	// BlurHash components; 4x3 when zero.
	ComponentsX int
	ComponentsY int
}

// Generate decodes data (png, jpeg, gif or webp) and returns its true size
// plus a PNG data URI of the image scaled to fit Size x Size.
func Generate(data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.ComponentsX <= 0 {
		opts.ComponentsX = 4
	}
	if opts.ComponentsY <= 0 {
		opts.ComponentsY = 3
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: zero size %dx%d", b.Dx(), b.Dy())
	}

	thumb := Fit(src, opts.Size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	hash, err := blurhash.Encode(opts.ComponentsX, opts.ComponentsY, thumb)
	if err != nil {
		return nil, fmt.Errorf("blurhash: %w", err)
	}

	return &Result{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		DataURI:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		BlurHash: hash,
	}, nil
}

// Fit scales src down so that neither edge exceeds size, keeping the aspect
// ratio. Images already inside the box are copied unscaled.
func Fit(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size || h > size {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
