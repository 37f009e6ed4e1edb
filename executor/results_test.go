package executor

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfedgeai/taskcat/pkg/som"
)

func TestResults(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	r, err := NewResults(in, out)
	require.NoError(t, err)

	shot, err := r.SaveScreenshot(7, image.NewRGBA(image.Rect(0, 0, 4, 3)))
	require.NoError(t, err)
	f, err := os.Open(filepath.Join(in, "screenshot_7.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.NotEmpty(t, shot)

	c := som.Coordinates{1, 2, 3, 4}
	res := &som.BuildResult{
		ResultJSON:  som.ActionPlan{Action: som.ActionType, Element: "Text Box ID 1: q", Details: "hi", Coordinates: &c},
		ResultImage: "aW1n",
	}
	require.NoError(t, r.SaveResult(7, res))

	data, err := os.ReadFile(filepath.Join(out, "result_7.json"))
	require.NoError(t, err)
	var plan som.ActionPlan
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Equal(t, res.ResultJSON, plan)

	labeled, err := os.ReadFile(filepath.Join(out, "labeled_screenshot_7.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(labeled))

	res.ResultImage = "%%%"
	assert.Error(t, r.SaveResult(8, res))
}
