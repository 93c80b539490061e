// Package qr produces the styled QR codes used by the overlay flow and cuts
// QR regions back out of screenshots.
package qr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	moduleSize = 10
	quietZone  = 2 // modules

	eyeOuterModules = 7
	eyeInnerModules = 5
	eyeDotModules   = 3

	eyeOuterRadius = 15
	eyeInnerRadius = 10
	eyeDotRadius   = 8
)

// Steam-blue finder dot, the visual signature of the generated codes.
var dotColor = [3]float64{0, 91.0 / 255.0, 138.0 / 255.0}

// Generate renders url as a styled QR code: error correction level H, rounded
// dark modules, custom finder eyes, scaled to size×size.
func Generate(url string, size int) (image.Image, error) {
	code, err := qrcode.New(url, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	code.DisableBorder = true
	grid := code.Bitmap()

	modules := len(grid)
	full := (modules + 2*quietZone) * moduleSize

	dc := gg.NewContext(full, full)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	for y, row := range grid {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := float64((x + quietZone) * moduleSize)
			py := float64((y + quietZone) * moduleSize)
			dc.DrawRoundedRectangle(px, py, moduleSize, moduleSize, moduleSize/4)
			dc.Fill()
		}
	}

	eyeSpan := float64(eyeOuterModules * moduleSize)
	offset := float64(quietZone * moduleSize)
	eyes := []struct{ x, y float64 }{
		{offset, offset},
		{float64(full) - offset - eyeSpan, offset},
		{offset, float64(full) - offset - eyeSpan},
	}
	for _, eye := range eyes {
		drawEye(dc, eye.x, eye.y)
	}

	img := dc.Image()
	if size > 0 && size != full {
		img = imaging.Resize(img, size, size, imaging.Lanczos)
	}
	return img, nil
}

func drawEye(dc *gg.Context, x, y float64) {
	outer := float64(eyeOuterModules * moduleSize)
	inner := float64(eyeInnerModules * moduleSize)
	dot := float64(eyeDotModules * moduleSize)
	innerOff := (outer - inner) / 2
	dotOff := (outer - dot) / 2

	// Blank whatever the module pass drew under the eye.
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(x-2, y-2, outer+4, outer+4)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.DrawRoundedRectangle(x, y, outer, outer, eyeOuterRadius)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawRoundedRectangle(x+innerOff, y+innerOff, inner, inner, eyeInnerRadius)
	dc.Fill()

	dc.SetRGB(dotColor[0], dotColor[1], dotColor[2])
	dc.DrawRoundedRectangle(x+dotOff, y+dotOff, dot, dot, eyeDotRadius)
	dc.Fill()
}
