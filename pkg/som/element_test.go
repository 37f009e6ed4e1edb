package som

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectIoU(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 0, 15, 10}

	assert.InDelta(t, 50.0/150.0, a.IoU(b), 1e-9)
	assert.Equal(t, 1.0, a.IoU(a))
	assert.Equal(t, 0.0, a.IoU(Rect{20, 20, 30, 30}))
	assert.Equal(t, 0.0, a.IoU(Rect{}))
}

func TestRectClampAndXYWH(t *testing.T) {
	r := Rect{-5, 10, 120, 40}.Clamp(image.Rect(0, 0, 100, 100))
	assert.Equal(t, Rect{0, 10, 100, 40}, r)
	assert.Equal(t, Coordinates{0, 10, 100, 30}, r.XYWH())
}

func TestElementLabel(t *testing.T) {
	e := ScreenElement{ID: 3, Kind: KindTextBox, Text: "Sign in"}
	assert.Equal(t, "Text Box ID 3: Sign in", e.Label())

	e = ScreenElement{ID: 12, Kind: KindIconBox, Text: "gear"}
	assert.Equal(t, "Icon Box ID 12: gear", e.Label())
}

func TestElementID(t *testing.T) {
	id, err := ElementID("Text Box ID 3: Sign in")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	id, err = ElementID(`"Icon Box ID 14: search"`)
	require.NoError(t, err)
	assert.Equal(t, 14, id)

	for _, bad := range []string{"", "Text Box", "Text Box ID 3 Sign in", "Text Box ID x: y", "Text Box ID -1: y"} {
		_, err := ElementID(bad)
		assert.Error(t, err, bad)
	}
}

func TestLabelsRoundTripIDs(t *testing.T) {
	elems := []ScreenElement{
		{ID: 0, Kind: KindTextBox, Text: "File"},
		{ID: 1, Kind: KindIconBox, Text: "close window"},
	}
	for i, l := range Labels(elems) {
		id, err := ElementID(l)
		require.NoError(t, err)
		assert.Equal(t, elems[i].ID, id)
	}
}
