package som

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

type ElementKind int

const (
	KindTextBox ElementKind = iota
	KindIconBox
)

func (k ElementKind) String() string {
	switch k {
	case KindTextBox:
		return "Text Box"
	case KindIconBox:
		return "Icon Box"
	default:
		return "Unknown Box"
	}
}

// Rect is a pixel rectangle in xyxy form.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (r Rect) Width() float64 {
	return r.X2 - r.X1
}

func (r Rect) Height() float64 {
	return r.Y2 - r.Y1
}

func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

func (r Rect) Intersect(o Rect) Rect {
	res := Rect{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	if res.Empty() {
		return Rect{}
	}
	return res
}

// IoU returns the intersection over union of two rectangles.
func (r Rect) IoU(o Rect) float64 {
	inter := r.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Clamp limits the rectangle to the given image bounds.
func (r Rect) Clamp(b image.Rectangle) Rect {
	return Rect{
		X1: min(max(r.X1, float64(b.Min.X)), float64(b.Max.X)),
		Y1: min(max(r.Y1, float64(b.Min.Y)), float64(b.Max.Y)),
		X2: min(max(r.X2, float64(b.Min.X)), float64(b.Max.X)),
		Y2: min(max(r.Y2, float64(b.Min.Y)), float64(b.Max.Y)),
	}
}

func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2))
}

// XYWH converts to the (x, y, width, height) form used for coordinates.
func (r Rect) XYWH() Coordinates {
	return Coordinates{r.X1, r.Y1, r.Width(), r.Height()}
}

func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X1: float64(r.Min.X),
		Y1: float64(r.Min.Y),
		X2: float64(r.Max.X),
		Y2: float64(r.Max.Y),
	}
}

// ScreenElement is one detected UI element of a single screenshot.
type ScreenElement struct {
	ID          int         `json:"id"`
	Kind        ElementKind `json:"kind"`
	Text        string      `json:"text"`
	BoundingBox Rect        `json:"bounding_box"`
}

// Label renders the element the way it is shown to the planner, e.g.
// "Text Box ID 3: Sign in".
func (e ScreenElement) Label() string {
	return fmt.Sprintf("%s ID %d: %s", e.Kind, e.ID, e.Text)
}

// Labels flattens an element list into planner input lines.
func Labels(elems []ScreenElement) []string {
	res := make([]string, 0, len(elems))
	for _, e := range elems {
		res = append(res, e.Label())
	}
	return res
}

// ElementID extracts the numeric ID out of a reference such as
// "Icon Box ID 12: Settings". The ID is the fourth whitespace separated
// token with its trailing colon removed.
func ElementID(ref string) (int, error) {
	fields := strings.Fields(ref)
	if len(fields) < 4 {
		return -1, fmt.Errorf("element reference %q has no id", ref)
	}
	tok := fields[3]
	if !strings.HasSuffix(tok, ":") {
		return -1, fmt.Errorf("element reference %q has no id", ref)
	}
	id, err := strconv.Atoi(strings.TrimSuffix(tok, ":"))
	if err != nil || id < 0 {
		return -1, fmt.Errorf("element reference %q has invalid id %q", ref, tok)
	}
	return id, nil
}
