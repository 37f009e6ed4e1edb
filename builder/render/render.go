// Package render draws set-of-marks labels over a screenshot.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lfedgeai/taskcat/pkg/som"
)

type Style struct {
	Thickness   int
	TextPadding int
}

func DefaultStyle() Style {
	return Style{Thickness: 3, TextPadding: 3}
}

var palette = []color.RGBA{
	{R: 230, G: 25, B: 75, A: 255},
	{R: 60, G: 180, B: 75, A: 255},
	{R: 0, G: 130, B: 200, A: 255},
	{R: 245, G: 130, B: 48, A: 255},
	{R: 145, G: 30, B: 180, A: 255},
	{R: 70, G: 150, B: 150, A: 255},
	{R: 240, G: 50, B: 230, A: 255},
	{R: 128, G: 128, B: 0, A: 255},
}

type Result struct {
	PNG []byte
	// Coordinates maps the decimal element ID to its box in xywh form.
	Coordinates map[string]som.Coordinates
	// Lines is the flattened element list in ID order.
	Lines []string
}

// Lookup resolves an element ID against the rendered boxes.
func (r *Result) Lookup(id int) (som.Coordinates, bool) {
	c, ok := r.Coordinates[strconv.Itoa(id)]
	return c, ok
}

func Render(img image.Image, elems []som.ScreenElement, style Style) (*Result, error) {
	b := img.Bounds()
	canvas := image.NewRGBA(b)
	draw.Draw(canvas, b, img, b.Min, draw.Src)

	res := &Result{
		Coordinates: make(map[string]som.Coordinates, len(elems)),
		Lines:       som.Labels(elems),
	}
	for _, e := range elems {
		key := strconv.Itoa(e.ID)
		if _, dup := res.Coordinates[key]; dup {
			return nil, fmt.Errorf("duplicate element id %d", e.ID)
		}
		res.Coordinates[key] = e.BoundingBox.XYWH()

		c := palette[e.ID%len(palette)]
		r := e.BoundingBox.Image().Intersect(b)
		strokeRect(canvas, r, style.Thickness, c)
		drawTag(canvas, r, key, style, c)
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, canvas); err != nil {
		return nil, fmt.Errorf("error encoding annotated image: %w", err)
	}
	res.PNG = buf.Bytes()
	return res, nil
}

func strokeRect(dst *image.RGBA, r image.Rectangle, t int, c color.Color) {
	if r.Empty() {
		return
	}
	if t < 1 {
		t = 1
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// drawTag puts the ID on a filled tag above the box, or inside it when the
// box touches the top edge.
func drawTag(dst *image.RGBA, r image.Rectangle, text string, style Style, c color.RGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 2*style.TextPadding
	h := face.Height + 2*style.TextPadding

	at := image.Pt(r.Min.X, r.Min.Y-h)
	if at.Y < dst.Bounds().Min.Y {
		at.Y = r.Min.Y
	}
	tag := image.Rectangle{Min: at, Max: at.Add(image.Pt(w, h))}.Intersect(dst.Bounds())
	draw.Draw(dst, tag, image.NewUniform(c), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor(c)),
		Face: face,
		Dot:  fixed.P(at.X+style.TextPadding, at.Y+style.TextPadding+face.Ascent),
	}
	d.DrawString(text)
}

func textColor(bg color.RGBA) color.Color {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum > 160 {
		return color.Black
	}
	return color.White
}
