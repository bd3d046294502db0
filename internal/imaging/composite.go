package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/nfnt/resize"
)

// Decode parses image bytes using the registered decoders.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Composite applies a grayscale alpha matte to src and returns the cutout.
// The matte is scaled to the source dimensions when the model returned it at
// its internal resolution, so the output always matches the input bounds.
func Composite(src image.Image, matte image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if mb := matte.Bounds(); mb.Dx() != w || mb.Dy() != h {
		matte = resize.Resize(uint(w), uint(h), matte, resize.Bilinear)
	}

	out := toNRGBA(src)
	mb := matte.Bounds()
	for y := 0; y < h; y++ {
		row := y * out.Stride
		for x := 0; x < w; x++ {
			out.Pix[row+x*4+3] = matteAlpha(matte, mb.Min.X+x, mb.Min.Y+y)
		}
	}
	return out
}

// ScaleTo resizes img to the given dimensions if it does not already match.
func ScaleTo(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}

// matteAlpha reads the matte value at (x, y) as an 8-bit alpha.
func matteAlpha(matte image.Image, x, y int) uint8 {
	switch m := matte.(type) {
	case *image.Gray:
		return m.GrayAt(x, y).Y
	case *image.NRGBA:
		// Mattes exported as NRGBA carry the value in the color channels.
		i := m.PixOffset(x, y)
		return m.Pix[i]
	default:
		g := color.GrayModel.Convert(matte.At(x, y)).(color.Gray)
		return g.Y
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		out := image.NewNRGBA(n.Bounds())
		copy(out.Pix, n.Pix)
		return out
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// HasAlpha reports whether any pixel of img is not fully opaque or the image
// carries an alpha channel at all.
func HasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return true
	}
	return false
}
