package placeholder

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerate_PNG(t *testing.T) {
	res, err := Generate(encodePNG(t, solid(800, 400)), Options{})
	require.NoError(t, err)

	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 400, res.Height)
	assert.Equal(t, "png", res.Format)
	assert.NotEmpty(t, res.BlurHash)
	require.True(t, strings.HasPrefix(res.DataURI, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.DataURI, "data:image/png;base64,"))
	require.NoError(t, err)
	thumb, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 32, thumb.Bounds().Dy())
}

func TestGenerate_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(120, 300), nil))

	res, err := Generate(buf.Bytes(), Options{Size: 32})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", res.Format)
	assert.Equal(t, 120, res.Width)
	assert.Equal(t, 300, res.Height)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(nil, Options{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Generate([]byte("definitely not an image"), Options{})
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{800, 400, 64, 32},
		{400, 800, 32, 64},
		{64, 64, 64, 64},
		{10, 20, 10, 20},
		{1000, 1, 64, 1},
	}
	for _, tc := range cases {
		got := Fit(solid(tc.w, tc.h), 64).Bounds()
		assert.Equal(t, tc.wantW, got.Dx(), "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, got.Dy(), "%dx%d", tc.w, tc.h)
	}
}
