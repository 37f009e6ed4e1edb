package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfedgeai/taskcat/pkg/som"
)

func white(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestRenderCoordinates(t *testing.T) {
	elems := []som.ScreenElement{
		{ID: 0, Kind: som.KindTextBox, Text: "OK", BoundingBox: som.Rect{X1: 10, Y1: 20, X2: 110, Y2: 70}},
		{ID: 1, Kind: som.KindIconBox, Text: "gear", BoundingBox: som.Rect{X1: 150, Y1: 0, X2: 180, Y2: 30}},
	}
	res, err := Render(white(200, 100), elems, DefaultStyle())
	require.NoError(t, err)

	assert.Equal(t, som.Coordinates{10, 20, 100, 50}, res.Coordinates["0"])
	assert.Equal(t, som.Coordinates{150, 0, 30, 30}, res.Coordinates["1"])
	assert.Equal(t, []string{"Text Box ID 0: OK", "Icon Box ID 1: gear"}, res.Lines)

	// every id the planner can see resolves
	for _, l := range res.Lines {
		id, err := som.ElementID(l)
		require.NoError(t, err)
		_, ok := res.Lookup(id)
		assert.True(t, ok)
	}
	_, ok := res.Lookup(7)
	assert.False(t, ok)
}

func TestRenderDrawsBoxes(t *testing.T) {
	elems := []som.ScreenElement{
		{ID: 0, Kind: som.KindTextBox, Text: "OK", BoundingBox: som.Rect{X1: 10, Y1: 40, X2: 110, Y2: 90}},
	}
	res, err := Render(white(200, 100), elems, DefaultStyle())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	r, g, b, _ := img.At(60, 41).RGBA()
	pr, pg, pb, _ := palette[0].RGBA()
	assert.Equal(t, []uint32{pr, pg, pb}, []uint32{r, g, b})

	// inside of the box is untouched
	r, g, b, _ = img.At(60, 65).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestRenderRejectsDuplicateIDs(t *testing.T) {
	elems := []som.ScreenElement{
		{ID: 0, BoundingBox: som.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}},
		{ID: 0, BoundingBox: som.Rect{X1: 20, Y1: 0, X2: 30, Y2: 10}},
	}
	_, err := Render(white(50, 50), elems, DefaultStyle())
	assert.Error(t, err)
}
