// Package detect turns a screenshot into the list of labeled screen
// elements: OCR text regions first, then icon regions that survive
// overlap suppression.
package detect

import (
	"context"
	"fmt"
	"image"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/som"
)

const (
	DefaultBoxThreshold = 0.03
	DefaultIoUThreshold = 0.1

	// an icon with this share of its area inside an OCR box is treated as
	// the same element
	containmentThreshold = 0.8
)

type TextRegion struct {
	Text string
	Box  som.Rect
}

type IconRegion struct {
	Box        som.Rect
	Confidence float64
}

type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) ([]TextRegion, error)
}

type IconModel interface {
	Detect(ctx context.Context, img image.Image, boxThreshold float64) ([]IconRegion, error)
}

type Options struct {
	BoxThreshold float64
	IoUThreshold float64
}

func DefaultOptions() Options {
	return Options{
		BoxThreshold: DefaultBoxThreshold,
		IoUThreshold: DefaultIoUThreshold,
	}
}

type Detector struct {
	ocr   OCREngine
	icons IconModel
}

func NewDetector(ocr OCREngine, icons IconModel) *Detector {
	return &Detector{ocr: ocr, icons: icons}
}

// Detect returns text boxes with IDs 0..N-1 followed by icon boxes. Icon
// boxes carry no text; the captioner fills it in.
func (d *Detector) Detect(ctx context.Context, img image.Image, opts Options) ([]som.ScreenElement, error) {
	bounds := img.Bounds()

	texts, err := d.ocr.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("ocr failed: %w", err)
	}
	icons, err := d.icons.Detect(ctx, img, opts.BoxThreshold)
	if err != nil {
		return nil, fmt.Errorf("icon detection failed: %w", err)
	}

	elems := make([]som.ScreenElement, 0, len(texts)+len(icons))
	ocrBoxes := make([]som.Rect, 0, len(texts))
	for _, t := range texts {
		box := t.Box.Clamp(bounds)
		if box.Empty() {
			continue
		}
		ocrBoxes = append(ocrBoxes, box)
		elems = append(elems, som.ScreenElement{
			ID:          len(elems),
			Kind:        som.KindTextBox,
			Text:        t.Text,
			BoundingBox: box,
		})
	}

	kept := suppressIcons(icons, ocrBoxes, bounds, opts)
	for _, box := range kept {
		elems = append(elems, som.ScreenElement{
			ID:          len(elems),
			Kind:        som.KindIconBox,
			BoundingBox: box,
		})
	}

	log.Debugf("Detected %d text boxes and %d icon boxes (%d icon candidates)",
		len(ocrBoxes), len(kept), len(icons))
	return elems, nil
}

func suppressIcons(icons []IconRegion, ocrBoxes []som.Rect, bounds image.Rectangle,
	opts Options) []som.Rect {
	cands := make([]som.Rect, 0, len(icons))
	for _, ic := range icons {
		if ic.Confidence < opts.BoxThreshold {
			continue
		}
		box := ic.Box.Clamp(bounds)
		if box.Empty() || claimedByText(box, ocrBoxes, opts.IoUThreshold) {
			continue
		}
		cands = append(cands, box)
	}

	// smaller boxes win when two icons overlap
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cands[order[a]].Area() < cands[order[b]].Area()
	})

	drop := make([]bool, len(cands))
	for i, a := range order {
		if drop[a] {
			continue
		}
		for _, b := range order[i+1:] {
			if !drop[b] && cands[a].IoU(cands[b]) > opts.IoUThreshold {
				drop[b] = true
			}
		}
	}

	res := make([]som.Rect, 0, len(cands))
	for i, c := range cands {
		if !drop[i] {
			res = append(res, c)
		}
	}
	return res
}

func claimedByText(box som.Rect, ocrBoxes []som.Rect, iouThreshold float64) bool {
	area := box.Area()
	for _, o := range ocrBoxes {
		if box.IoU(o) > iouThreshold {
			return true
		}
		if area > 0 && box.Intersect(o).Area()/area >= containmentThreshold {
			return true
		}
	}
	return false
}
