// Package desktop binds the executor to the live display and input devices.
package desktop

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Display captures one monitor.
type Display struct {
	Index int
}

// PrimaryDisplay returns the display grabbed by default.
func PrimaryDisplay() *Display {
	return &Display{Index: 0}
}

func (d *Display) Capture() (image.Image, error) {
	if n := screenshot.NumActiveDisplays(); d.Index >= n {
		return nil, fmt.Errorf("display %d not found, %d active", d.Index, n)
	}
	bound := screenshot.GetDisplayBounds(d.Index)
	img, err := screenshot.CaptureRect(bound)
	if err != nil {
		return nil, fmt.Errorf("error capturing display %d: %w", d.Index, err)
	}
	return img, nil
}
