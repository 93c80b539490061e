// Package pic composes doctored profile screenshots: cropping, darkening and
// alpha-compositing prepared PNG overlays.
package pic

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	banTopCrop     = 105
	friendSideCrop = 15
	darkenFactor   = 0.6
	bannerTrim     = 5
	bannerDestY    = -18
)

// Assets holds the overlay images. Nil entries are tolerated: composing then
// degrades to the darkened screenshot, matching overlay-load failures.
type Assets struct {
	Dialog image.Image // centered request dialog
	Banner image.Image // top-centered notification banner
}

// LoadAssets reads overlay PNGs from dir. Missing files leave the
// corresponding entry nil rather than failing.
func LoadAssets(dir string) Assets {
	return Assets{
		Dialog: loadPNG(filepath.Join(dir, "friend.png")),
		Banner: loadPNG(filepath.Join(dir, "img.png")),
	}
}

func loadPNG(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil
	}
	return img
}

// BanScreen builds the fake ban view: the page chrome strip is cropped off the
// top, the page darkened and the dialog centered over it.
func BanScreen(shot image.Image, a Assets) image.Image {
	b := shot.Bounds()
	out := imaging.Crop(shot, image.Rect(b.Min.X, b.Min.Y+banTopCrop, b.Max.X, b.Max.Y))
	out = darken(out)
	if a.Dialog != nil {
		out = imaging.OverlayCenter(out, a.Dialog, 1.0)
	}
	return out
}

// FriendRequest builds the fake friend-request view: side margins cropped, the
// page darkened, the dialog centered and the banner anchored at the top edge
// with its bottom strip trimmed.
func FriendRequest(shot image.Image, a Assets) image.Image {
	b := shot.Bounds()
	out := imaging.Crop(shot, image.Rect(b.Min.X+friendSideCrop, b.Min.Y, b.Max.X-friendSideCrop, b.Max.Y))
	out = darken(out)
	if a.Dialog != nil {
		out = imaging.OverlayCenter(out, a.Dialog, 1.0)
	}
	if a.Banner != nil {
		banner := a.Banner
		bb := banner.Bounds()
		if bb.Dy() > bannerTrim {
			banner = imaging.Crop(banner, image.Rect(bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y-bannerTrim))
		}
		pos := image.Pt((out.Bounds().Dx()-banner.Bounds().Dx())/2, bannerDestY)
		out = imaging.Overlay(out, banner, pos, 1.0)
	}
	return out
}

func darken(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = uint8(float64(c.R) * darkenFactor)
		c.G = uint8(float64(c.G) * darkenFactor)
		c.B = uint8(float64(c.B) * darkenFactor)
		return c
	})
}

// EncodePNG renders the composed image to PNG bytes for sending.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("pic: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
