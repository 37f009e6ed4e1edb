package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/som"
	"github.com/lfedgeai/taskcat/pkg/utils"
)

// Store keeps the artifacts of every round under a directory named after the
// request ID, so concurrent rounds never share a path.
type Store struct {
	inputDir  string
	outputDir string
}

func NewStore(inputDir, outputDir string) (*Store, error) {
	if err := utils.EnsureDirs(inputDir, outputDir); err != nil {
		return nil, err
	}
	return &Store{inputDir: inputDir, outputDir: outputDir}, nil
}

func (s *Store) SaveInput(id string, image []byte) (string, error) {
	dir := filepath.Join(s.inputDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, common.ScreenshotFileName)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("error saving screenshot: %w", err)
	}
	return path, nil
}

func (s *Store) SaveOutput(id string, labeled []byte, plan *som.ActionPlan) (string, error) {
	dir := filepath.Join(s.outputDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, common.LabeledFileName), labeled, 0o644); err != nil {
		return "", fmt.Errorf("error saving labeled screenshot: %w", err)
	}
	data, err := json.MarshalIndent(plan, "", "    ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, common.ResultFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error saving result: %w", err)
	}
	log.Infof("Result has been saved to %s", path)
	return path, nil
}
