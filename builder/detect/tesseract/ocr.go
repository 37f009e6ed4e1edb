// Package tesseract provides the OCR engine backed by libtesseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract"

	"github.com/lfedgeai/taskcat/builder/detect"
	"github.com/lfedgeai/taskcat/pkg/som"
)

const DefaultMinConfidence = 60

type Engine struct {
	languages     []string
	minConfidence float64
}

func New(languages []string, minConfidence float64) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{languages: languages, minConfidence: minConfidence}
}

// Recognize returns one region per text line. A gosseract client is not safe
// for concurrent use, so each call owns its own.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]detect.TextRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("error encoding image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("error setting languages: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("error loading image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("error running ocr: %w", err)
	}

	out := make([]detect.TextRegion, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || b.Confidence < e.minConfidence {
			continue
		}
		out = append(out, detect.TextRegion{
			Text: text,
			Box:  som.RectFromImage(b.Box),
		})
	}
	return out, nil
}
