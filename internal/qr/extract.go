package qr

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	gzqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoQR is returned when no QR code is detected in the image.
var ErrNoQR = errors.New("qr: no code detected")

const whiteThreshold = 240

// Extract locates a QR code in img and returns its region grown by padding
// pixels, clamped to the image bounds.
func Extract(img image.Image, padding int) (image.Image, error) {
	rect, err := detect(img)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, grow(rect, padding, img.Bounds())), nil
}

// ExtractTransparent is Extract with near-white pixels turned fully
// transparent, producing a region suited for compositing over dark pages.
func ExtractTransparent(img image.Image, padding int) (image.Image, error) {
	region, err := Extract(img, padding)
	if err != nil {
		return nil, err
	}
	out := imaging.Clone(region)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := out.NRGBAAt(x, y)
			if c.R >= whiteThreshold && c.G >= whiteThreshold && c.B >= whiteThreshold {
				out.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return out, nil
}

func detect(img image.Image) (image.Rectangle, error) {
	src := gozxing.NewLuminanceSourceFromImage(img)
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
	if err != nil {
		return image.Rectangle{}, err
	}
	result, err := gzqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return image.Rectangle{}, ErrNoQR
	}

	points := result.GetResultPoints()
	if len(points) == 0 {
		return image.Rectangle{}, ErrNoQR
	}
	minX, minY := points[0].GetX(), points[0].GetY()
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.GetX())
		minY = min(minY, p.GetY())
		maxX = max(maxX, p.GetX())
		maxY = max(maxY, p.GetY())
	}
	return image.Rect(int(minX), int(minY), int(maxX), int(maxY)), nil
}

// grow expands rect by pad on every side and clamps it to bounds.
func grow(rect image.Rectangle, pad int, bounds image.Rectangle) image.Rectangle {
	return rect.Inset(-pad).Intersect(bounds)
}
