// Package builder runs one build round: element detection, captioning,
// annotation and action planning for a screenshot and a task.
package builder

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/builder/caption"
	"github.com/lfedgeai/taskcat/builder/detect"
	"github.com/lfedgeai/taskcat/builder/detect/tesseract"
	"github.com/lfedgeai/taskcat/builder/llm"
	"github.com/lfedgeai/taskcat/builder/planner"
	"github.com/lfedgeai/taskcat/builder/render"
	"github.com/lfedgeai/taskcat/pkg/som"
)

// Components are the collaborators a Builder owns for its whole lifetime.
type Components struct {
	Detector  *detect.Detector
	Captioner caption.Captioner
	Planner   *planner.Planner
	// Store is optional; without it nothing is written to disk.
	Store   *Store
	Metrics *Metrics
}

type Builder struct {
	detector           *detect.Detector
	captioner          caption.Captioner
	planner            *planner.Planner
	store              *Store
	metrics            *Metrics
	detectOpts         detect.Options
	style              render.Style
	captionConcurrency int
}

func NewBuilder(c Components, opts detect.Options, captionConcurrency int) *Builder {
	return &Builder{
		detector:           c.Detector,
		captioner:          c.Captioner,
		planner:            c.Planner,
		store:              c.Store,
		metrics:            c.Metrics,
		detectOpts:         opts,
		style:              render.DefaultStyle(),
		captionConcurrency: captionConcurrency,
	}
}

// NewFromConfig wires the production collaborators described by cfg.
func NewFromConfig(cfg *Config, metrics *Metrics) (*Builder, error) {
	mode, err := planner.ParseModeFromString(cfg.PlannerParseMode)
	if err != nil {
		return nil, err
	}
	ep, err := llm.LookupEndpoint(llm.PlannerEndpoints, cfg.PlannerModel)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ep, llm.Options{
		Timeout:    cfg.LLMTimeout,
		MaxRetries: uint64(cfg.LLMMaxRetries),
	})
	if err != nil {
		return nil, err
	}

	hc := &http.Client{Timeout: cfg.InferenceTimeout}
	icons := detect.NewHTTPIconModel(cfg.DetectorURL, cfg.YoloModelPath, cfg.DetectorAPIKey, hc)
	ocr := tesseract.New(cfg.OCRLanguages, cfg.OCRMinConfidence)

	captionEp := llm.EndpointInfo{
		Name:     "captioner",
		Provider: llm.ProviderOpenAI,
		Model:    cfg.CaptionModelName,
		Base:     cfg.CaptionModelPath,
		APIKey:   cfg.CaptionAPIKey,
		Url:      "/chat/completions",
	}
	captioner := caption.NewVLMCaptioner(llm.NewOpenAIClient(captionEp, hc), cfg.CaptionModelName).
		WithRateLimit(cfg.CaptionRateLimit)

	var store *Store
	if cfg.PersistResults {
		if store, err = NewStore(cfg.InputFolder, cfg.OutputFolder); err != nil {
			return nil, err
		}
	}

	log.Infof("Builder ready: detector %s, captioner %s at %s, planner %s (%s parsing)",
		cfg.DetectorURL, cfg.CaptionModelName, cfg.CaptionModelPath, ep.Model, mode)
	return NewBuilder(Components{
		Detector:  detect.NewDetector(ocr, icons),
		Captioner: captioner,
		Planner:   planner.New(client, mode),
		Store:     store,
		Metrics:   metrics,
	}, detect.Options{
		BoxThreshold: cfg.BoxThreshold,
		IoUThreshold: cfg.IoUThreshold,
	}, cfg.CaptionConcurrency), nil
}

// Build runs one round. Any failing stage aborts the round.
func (b *Builder) Build(ctx context.Context, req *som.TaskRequest) (*som.BuildResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	logger := log.WithField("request", id)

	img, format, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	logger.Debugf("Decoded %s screenshot %v", format, img.Bounds())

	if b.store != nil {
		if _, err := b.store.SaveInput(id, req.Image); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	elems, err := b.detector.Detect(ctx, img, b.detectOpts)
	if err != nil {
		return nil, err
	}
	b.metrics.observeStage("detect", start)
	b.metrics.observeElements(countKinds(elems))

	start = time.Now()
	if err := caption.CaptionAll(ctx, b.captioner, img, elems, b.captionConcurrency); err != nil {
		return nil, fmt.Errorf("captioning failed: %w", err)
	}
	b.metrics.observeStage("caption", start)

	start = time.Now()
	rendered, err := render.Render(img, elems, b.style)
	if err != nil {
		return nil, err
	}
	b.metrics.observeStage("render", start)

	start = time.Now()
	plan, err := b.planner.Plan(ctx, req.Task, rendered.Lines, rendered)
	if err != nil {
		return nil, err
	}
	b.metrics.observeStage("plan", start)

	if b.store != nil {
		if _, err := b.store.SaveOutput(id, rendered.PNG, plan); err != nil {
			return nil, err
		}
	}
	logger.Infof("Build round finished with %d elements, action %s", len(elems), plan.Action)

	return &som.BuildResult{
		ResultJSON:  *plan,
		ResultImage: base64.StdEncoding.EncodeToString(rendered.PNG),
	}, nil
}

func countKinds(elems []som.ScreenElement) (int, int) {
	texts, icons := 0, 0
	for _, e := range elems {
		if e.Kind == som.KindTextBox {
			texts++
		} else {
			icons++
		}
	}
	return texts, icons
}
