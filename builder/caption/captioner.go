// Package caption describes icon regions that carry no OCR text.
package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lfedgeai/taskcat/pkg/openai"
	"github.com/lfedgeai/taskcat/pkg/som"
)

const (
	CropSize           = 64
	DefaultConcurrency = 4
	FallbackCaption    = "icon"

	captionPrompt = "Describe this user interface icon in a few words. Reply with the description only."
)

type Captioner interface {
	Caption(ctx context.Context, img image.Image, region som.Rect) (string, error)
}

// ChatClient is the multimodal chat call the VLM captioner relies on.
type ChatClient interface {
	Chat(ctx context.Context, req *openai.ChatCompletionRequest) (string, error)
}

// VLMCaptioner asks a vision language model to describe an icon crop.
type VLMCaptioner struct {
	client    ChatClient
	model     string
	maxTokens int
	limiter   *rate.Limiter
}

func NewVLMCaptioner(client ChatClient, model string) *VLMCaptioner {
	return &VLMCaptioner{client: client, model: model, maxTokens: 20}
}

// WithRateLimit caps caption requests per second. Zero or less removes the
// cap.
func (c *VLMCaptioner) WithRateLimit(perSecond float64) *VLMCaptioner {
	if perSecond <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	return c
}

func (c *VLMCaptioner) Caption(ctx context.Context, img image.Image, region som.Rect) (string, error) {
	uri, err := cropDataURI(img, region)
	if err != nil {
		return "", err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	req := &openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatMessage{{
			Role: "user",
			Content: []openai.ContentPart{
				openai.TextPart(captionPrompt),
				openai.ImagePart(uri),
			},
		}},
	}
	out, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Crop cuts region out of img and scales it to CropSize x CropSize.
func Crop(img image.Image, region som.Rect) (image.Image, error) {
	r := region.Clamp(img.Bounds()).Image()
	if r.Empty() {
		return nil, fmt.Errorf("region %v is outside the image", region)
	}
	dst := image.NewRGBA(image.Rect(0, 0, CropSize, CropSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, r, draw.Src, nil)
	return dst, nil
}

func cropDataURI(img image.Image, region som.Rect) (string, error) {
	crop, err := Crop(img, region)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, crop); err != nil {
		return "", fmt.Errorf("error encoding crop: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CaptionAll fills in the text of every icon element that has none. OCR text
// is never replaced. The first failing caption cancels the rest.
func CaptionAll(ctx context.Context, c Captioner, img image.Image,
	elems []som.ScreenElement, concurrency int) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	n := 0
	for i := range elems {
		if elems[i].Kind != som.KindIconBox || elems[i].Text != "" {
			continue
		}
		n++
		e := &elems[i]
		g.Go(func() error {
			text, err := c.Caption(gctx, img, e.BoundingBox)
			if err != nil {
				return fmt.Errorf("element %d: %w", e.ID, err)
			}
			if text == "" {
				text = FallbackCaption
			}
			e.Text = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Debugf("Captioned %d icon elements", n)
	return nil
}
