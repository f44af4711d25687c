package imgproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxDimension = 512
	jpegQuality  = 85
)

// orientation reads the EXIF orientation tag, defaulting to 1 when the
// data carries none.
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// reorient maps each destination pixel back to its source position for the
// given EXIF orientation. Orientations 5-8 swap the axes.
func reorient(img image.Image, orient int) image.Image {
	if orient <= 1 || orient > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var src func(x, y int) (int, int)
	swapped := orient >= 5
	switch orient {
	case 2:
		src = func(x, y int) (int, int) { return w - 1 - x, y }
	case 3:
		src = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 4:
		src = func(x, y int) (int, int) { return x, h - 1 - y }
	case 5:
		src = func(x, y int) (int, int) { return y, x }
	case 6:
		src = func(x, y int) (int, int) { return y, h - 1 - x }
	case 7:
		src = func(x, y int) (int, int) { return w - 1 - y, h - 1 - x }
	case 8:
		src = func(x, y int) (int, int) { return w - 1 - y, x }
	}

	dw, dh := w, h
	if swapped {
		dw, dh = h, w
	}
	out := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := src(x, y)
			out.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return out
}

// Normalize corrects the orientation of an uploaded image and re-encodes
// it as JPEG bounded to maxDimension on the longer side, preserving aspect
// ratio. Images already within bounds and upright pass through unchanged.
func Normalize(data []byte) ([]byte, error) {
	orient := orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if orient != 1 {
		img = reorient(img, orient)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if orient == 1 && w <= maxDimension && h <= maxDimension {
		return data, nil
	}

	scale := 1.0
	if w > maxDimension || h > maxDimension {
		scale = float64(maxDimension) / float64(w)
		if sy := float64(maxDimension) / float64(h); sy < scale {
			scale = sy
		}
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)

	scaled := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}

	log.Infof("Normalized image: %d bytes -> %d bytes (%dx%d -> %dx%d, orientation %d)",
		len(data), buf.Len(), w, h, nw, nh, orient)
	return buf.Bytes(), nil
}
