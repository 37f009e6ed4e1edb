package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/net"
	"github.com/lfedgeai/taskcat/pkg/som"
)

type detectResponse struct {
	Boxes []struct {
		XYXY       []float64 `json:"xyxy"`
		Confidence float64   `json:"confidence"`
	} `json:"boxes"`
	Error string `json:"error,omitempty"`
}

// HTTPIconModel runs the icon detection model behind an inference server.
// The server receives the screenshot as multipart field "file" together with
// the model weights path and the confidence threshold.
type HTTPIconModel struct {
	url       string
	modelPath string
	apiKey    string
	http      *http.Client
}

func NewHTTPIconModel(url, modelPath, apiKey string, hc *http.Client) *HTTPIconModel {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPIconModel{url: url, modelPath: modelPath, apiKey: apiKey, http: hc}
}

func (m *HTTPIconModel) Detect(ctx context.Context, img image.Image,
	boxThreshold float64) ([]IconRegion, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("error encoding image: %w", err)
	}

	res, err := net.SendMultipart(ctx, m.http, m.url,
		[]net.FilePart{{Field: "file", FileName: "screenshot.png", ContentType: "image/png", Data: buf.Bytes()}},
		map[string]string{
			"model":         m.modelPath,
			"box_threshold": strconv.FormatFloat(boxThreshold, 'f', -1, 64),
		}, m.apiKey)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(res, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshalling detector response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("detector error: %s", resp.Error)
	}

	out := make([]IconRegion, 0, len(resp.Boxes))
	for i, b := range resp.Boxes {
		if len(b.XYXY) != 4 {
			return nil, fmt.Errorf("detector box %d has %d coordinates", i, len(b.XYXY))
		}
		out = append(out, IconRegion{
			Box:        som.Rect{X1: b.XYXY[0], Y1: b.XYXY[1], X2: b.XYXY[2], Y2: b.XYXY[3]},
			Confidence: b.Confidence,
		})
	}
	log.Debugf("Icon model returned %d boxes", len(out))
	return out, nil
}
