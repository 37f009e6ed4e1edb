package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/net"
	"github.com/lfedgeai/taskcat/pkg/som"
)

// ErrRequest marks a failed round trip to the build service.
var ErrRequest = errors.New("build request failed")

// BuildClient asks the build service for the next action.
type BuildClient interface {
	Build(ctx context.Context, screenshot []byte, task string) (*som.BuildResult, error)
}

type HTTPBuildClient struct {
	url    string
	apiKey string
	http   *http.Client
	// Progress receives the wait spinner; nil disables it.
	Progress io.Writer
}

// NewHTTPBuildClient talks to serverURL. An empty apiKey sends no
// Authorization header.
func NewHTTPBuildClient(serverURL, apiKey string, timeout time.Duration) *HTTPBuildClient {
	return &HTTPBuildClient{
		url:    serverURL + common.BuildPath,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPBuildClient) Build(ctx context.Context, screenshot []byte, task string) (*som.BuildResult, error) {
	stop := c.spin("Building next action...")
	body, err := net.SendMultipart(ctx, c.http, c.url,
		[]net.FilePart{{
			Field:       "file",
			FileName:    common.ScreenshotFileName,
			ContentType: "image/png",
			Data:        screenshot,
		}},
		map[string]string{"task": task}, c.apiKey)
	stop()
	if err != nil {
		var se *net.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRequest, se.Code, detail(body))
		}
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	res := &som.BuildResult{}
	if err := res.Unmarshal(body); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrRequest, err)
	}
	return res, nil
}

func detail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return string(body)
}

func (c *HTTPBuildClient) spin(desc string) func() {
	if c.Progress == nil {
		return func() {}
	}
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(c.Progress),
		progressbar.OptionSetWidth(10),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(c.Progress, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				bar.Describe("Done")
				bar.Finish()
				return
			case <-t.C:
				bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}
