package executor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/som"
	"github.com/lfedgeai/taskcat/pkg/utils"
)

// Results lays out the files of one execution session.
type Results struct {
	inputDir  string
	outputDir string
}

func NewResults(inputDir, outputDir string) (*Results, error) {
	if err := utils.EnsureDirs(inputDir, outputDir); err != nil {
		return nil, err
	}
	return &Results{inputDir: inputDir, outputDir: outputDir}, nil
}

func (r *Results) SaveTask(task string) (string, error) {
	data, err := json.MarshalIndent(map[string]string{"task": task}, "", "    ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.inputDir, common.TaskFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error saving task: %w", err)
	}
	log.Infof("Task saved to %s", path)
	return path, nil
}

// SaveScreenshot encodes img as PNG into screenshot_<idx>.png and returns
// the encoded bytes.
func (r *Results) SaveScreenshot(idx int, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("error encoding screenshot: %w", err)
	}
	path := filepath.Join(r.inputDir, fmt.Sprintf("screenshot_%d.png", idx))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("error saving screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveResult writes result_<idx>.json and labeled_screenshot_<idx>.png.
func (r *Results) SaveResult(idx int, res *som.BuildResult) error {
	data, err := json.MarshalIndent(res.ResultJSON, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(r.outputDir, fmt.Sprintf("result_%d.json", idx)), data, 0o644); err != nil {
		return fmt.Errorf("error saving result: %w", err)
	}
	img, err := base64.StdEncoding.DecodeString(res.ResultImage)
	if err != nil {
		return fmt.Errorf("error decoding result image: %w", err)
	}
	path := filepath.Join(r.outputDir, fmt.Sprintf("labeled_screenshot_%d.png", idx))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("error saving labeled screenshot: %w", err)
	}
	return nil
}
