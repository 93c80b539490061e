package qr

import (
	"image"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSize(t *testing.T) {
	img, err := Generate("https://steamcommunity.com/profiles/76561197960287930", 250)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, 250, b.Dx())
	assert.Equal(t, 250, b.Dy())
}

func TestGrowClamps(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	r := grow(image.Rect(20, 20, 40, 40), 5, bounds)
	assert.Equal(t, image.Rect(15, 15, 45, 45), r)

	r = grow(image.Rect(2, 2, 98, 98), 10, bounds)
	assert.Equal(t, bounds, r)
}

func TestExtractFindsPlainCode(t *testing.T) {
	plain, err := qrcode.New("hello", qrcode.Medium)
	require.NoError(t, err)
	img := plain.Image(256)

	region, err := Extract(img, 5)
	require.NoError(t, err)
	b := region.Bounds()
	assert.Greater(t, b.Dx(), 0)
	assert.LessOrEqual(t, b.Dx(), 256)
}

func TestExtractNoCode(t *testing.T) {
	blank := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	_, err := Extract(blank, 5)
	assert.ErrorIs(t, err, ErrNoQR)
}
