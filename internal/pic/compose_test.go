package pic

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) image.Image {
	return imaging.New(w, h, c)
}

func TestBanScreenCropsAndDarkens(t *testing.T) {
	shot := solid(200, 300, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	out := BanScreen(shot, Assets{})
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 300-105, out.Bounds().Dy())

	r, g, b, _ := out.At(out.Bounds().Min.X, out.Bounds().Min.Y).RGBA()
	assert.EqualValues(t, 60, r>>8)
	assert.EqualValues(t, 60, g>>8)
	assert.EqualValues(t, 60, b>>8)
}

func TestFriendRequestGeometry(t *testing.T) {
	shot := solid(400, 300, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	banner := solid(100, 50, color.NRGBA{R: 255, A: 255})

	out := FriendRequest(shot, Assets{Banner: banner})
	assert.Equal(t, 400-30, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())

	// Banner lands top-centered with its first 18 rows off-canvas; row 0 of the
	// output inside the banner span must carry banner pixels.
	cx := out.Bounds().Dx() / 2
	r, _, _, _ := out.At(cx, 0).RGBA()
	assert.EqualValues(t, 255, r>>8)
}

func TestMissingOverlaysDegrade(t *testing.T) {
	shot := solid(50, 150, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	out := FriendRequest(shot, Assets{})
	require.NotNil(t, out)
	assert.Equal(t, 20, out.Bounds().Dx())
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(solid(4, 4, color.NRGBA{A: 255}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
