package builder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfedgeai/taskcat/builder/detect"
	"github.com/lfedgeai/taskcat/builder/llm"
	"github.com/lfedgeai/taskcat/builder/planner"
	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/som"
)

type stubOCR struct{ regions []detect.TextRegion }

func (s *stubOCR) Recognize(ctx context.Context, img image.Image) ([]detect.TextRegion, error) {
	return s.regions, nil
}

type stubIcons struct{ regions []detect.IconRegion }

func (s *stubIcons) Detect(ctx context.Context, img image.Image, th float64) ([]detect.IconRegion, error) {
	return s.regions, nil
}

type stubCaptioner struct{}

func (stubCaptioner) Caption(ctx context.Context, img image.Image, region som.Rect) (string, error) {
	return "gear", nil
}

type stubLLM struct {
	reply string
	err   error
	user  string
}

func (s *stubLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.user = req.User
	return s.reply, s.err
}

func screenshotPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testBuilder(l *stubLLM, store *Store, m *Metrics) *Builder {
	d := detect.NewDetector(
		&stubOCR{regions: []detect.TextRegion{
			{Text: "Sign in", Box: som.Rect{X1: 10, Y1: 20, X2: 110, Y2: 70}},
		}},
		&stubIcons{regions: []detect.IconRegion{
			{Box: som.Rect{X1: 200, Y1: 100, X2: 240, Y2: 140}, Confidence: 0.8},
		}},
	)
	return NewBuilder(Components{
		Detector:  d,
		Captioner: stubCaptioner{},
		Planner:   planner.New(l, planner.ParseStrict),
		Store:     store,
		Metrics:   m,
	}, detect.DefaultOptions(), 2)
}

func TestBuildRound(t *testing.T) {
	l := &stubLLM{reply: `{"ACTION":"click","ELEMENT":"Text Box ID 0: Sign in","DETAILS":""}`}
	b := testBuilder(l, nil, nil)

	res, err := b.Build(context.Background(), &som.TaskRequest{Task: "log in", Image: screenshotPNG(t)})
	require.NoError(t, err)
	assert.Equal(t, som.ActionClick, res.ResultJSON.Action)
	require.NotNil(t, res.ResultJSON.Coordinates)
	assert.Equal(t, som.Coordinates{10, 20, 100, 50}, *res.ResultJSON.Coordinates)

	assert.Contains(t, l.user, "Text Box ID 0: Sign in")
	assert.Contains(t, l.user, "Icon Box ID 1: gear")

	data, err := base64.StdEncoding.DecodeString(res.ResultImage)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
}

func TestBuildPersistsPerRequest(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	store, err := NewStore(in, out)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	l := &stubLLM{reply: `{"ACTION":"wait","ELEMENT":"","DETAILS":"loading"}`}
	b := testBuilder(l, store, m)
	for i := 0; i < 2; i++ {
		_, err := b.Build(context.Background(), &som.TaskRequest{Task: "wait", Image: screenshotPNG(t)})
		require.NoError(t, err)
	}

	results, err := filepath.Glob(filepath.Join(out, "*", common.ResultFileName))
	require.NoError(t, err)
	assert.Len(t, results, 2)
	shots, err := filepath.Glob(filepath.Join(in, "*", common.ScreenshotFileName))
	require.NoError(t, err)
	assert.Len(t, shots, 2)

	data, err := os.ReadFile(results[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ACTION": "wait"`)

	assert.Equal(t, 2, testutil.CollectAndCount(m.elements, "taskcat_detected_elements"))
	assert.Equal(t, 4, testutil.CollectAndCount(m.stages, "taskcat_build_stage_duration_seconds"))
}

func TestBuildFailures(t *testing.T) {
	b := testBuilder(&stubLLM{reply: "not json"}, nil, nil)
	_, err := b.Build(context.Background(), &som.TaskRequest{Task: "t", Image: screenshotPNG(t)})
	assert.ErrorIs(t, err, planner.ErrMalformedResponse)

	boom := errors.New("offline")
	b = testBuilder(&stubLLM{err: boom}, nil, nil)
	_, err = b.Build(context.Background(), &som.TaskRequest{Task: "t", Image: screenshotPNG(t)})
	assert.ErrorIs(t, err, boom)

	_, err = b.Build(context.Background(), &som.TaskRequest{Task: "t", Image: []byte("garbage")})
	assert.Error(t, err)

	_, err = b.Build(context.Background(), &som.TaskRequest{Task: "", Image: screenshotPNG(t)})
	assert.Error(t, err)
}
