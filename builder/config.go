package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lfedgeai/taskcat/builder/caption"
	"github.com/lfedgeai/taskcat/builder/detect"
	"github.com/lfedgeai/taskcat/builder/detect/tesseract"
	"github.com/lfedgeai/taskcat/pkg/logging"
	"github.com/lfedgeai/taskcat/pkg/utils"
)

type Config struct {
	Addr string
	Port string

	InputFolder    string
	OutputFolder   string
	PersistResults bool

	// Device is reported by the health endpoint; inference runs on the
	// model servers.
	Device string

	PlannerModel     string
	PlannerParseMode string
	LLMTimeout       time.Duration
	LLMMaxRetries    int

	// InferenceTimeout bounds each call to the icon detector and captioner
	// servers. The planner LLM has its own LLMTimeout.
	InferenceTimeout time.Duration
	DetectorURL      string
	DetectorAPIKey   string
	YoloModelPath    string
	BoxThreshold     float64
	IoUThreshold     float64
	OCRLanguages     []string
	OCRMinConfidence float64

	CaptionModelName   string
	CaptionModelPath   string
	CaptionAPIKey      string
	CaptionConcurrency int
	CaptionRateLimit   float64

	APIKey              string
	MaxConcurrentBuilds int
	ShutdownTimeout     time.Duration

	Log logging.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("builder_addr", "0.0.0.0")
	v.SetDefault("builder_port", "8000")
	v.SetDefault("persist_results", true)
	v.SetDefault("device", "cpu")
	v.SetDefault("llm_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("planner_parse_mode", "strict")
	v.SetDefault("llm_timeout", "2m")
	v.SetDefault("llm_max_retries", 0)
	v.SetDefault("inference_timeout", "1m")
	v.SetDefault("shutdown_timeout", "30s")
	v.SetDefault("box_threshold", detect.DefaultBoxThreshold)
	v.SetDefault("iou_threshold", detect.DefaultIoUThreshold)
	v.SetDefault("ocr_languages", "eng")
	v.SetDefault("ocr_min_confidence", tesseract.DefaultMinConfidence)
	v.SetDefault("caption_concurrency", caption.DefaultConcurrency)
	v.SetDefault("caption_rate_limit", 0)
	v.SetDefault("max_concurrent_builds", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age", 30)
}

// LoadConfig reads the builder configuration from the environment, after
// merging in envFile.
func LoadConfig(envFile string) (*Config, error) {
	if err := utils.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Addr:                v.GetString("builder_addr"),
		Port:                v.GetString("builder_port"),
		InputFolder:         v.GetString("input_folder"),
		OutputFolder:        v.GetString("output_folder"),
		PersistResults:      v.GetBool("persist_results"),
		Device:              v.GetString("device"),
		PlannerModel:        v.GetString("llm_model"),
		PlannerParseMode:    v.GetString("planner_parse_mode"),
		LLMTimeout:          v.GetDuration("llm_timeout"),
		LLMMaxRetries:       v.GetInt("llm_max_retries"),
		InferenceTimeout:    v.GetDuration("inference_timeout"),
		DetectorURL:         v.GetString("detector_url"),
		DetectorAPIKey:      v.GetString("detector_api_key"),
		YoloModelPath:       v.GetString("yolo_model_path"),
		BoxThreshold:        v.GetFloat64("box_threshold"),
		IoUThreshold:        v.GetFloat64("iou_threshold"),
		OCRLanguages:        strings.FieldsFunc(v.GetString("ocr_languages"), isListSep),
		OCRMinConfidence:    v.GetFloat64("ocr_min_confidence"),
		CaptionModelName:    v.GetString("caption_model_name"),
		CaptionModelPath:    v.GetString("caption_model_path"),
		CaptionAPIKey:       v.GetString("caption_api_key"),
		CaptionConcurrency:  v.GetInt("caption_concurrency"),
		CaptionRateLimit:    v.GetFloat64("caption_rate_limit"),
		APIKey:              v.GetString("builder_api_key"),
		MaxConcurrentBuilds: v.GetInt("max_concurrent_builds"),
		ShutdownTimeout:     v.GetDuration("shutdown_timeout"),
		Log: logging.Config{
			Level:      v.GetString("log_level"),
			LogFile:    v.GetString("log_file"),
			MaxSizeMB:  v.GetInt("log_max_size"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAgeDays: v.GetInt("log_max_age"),
		},
	}
	return cfg, nil
}

func isListSep(r rune) bool {
	return r == ',' || r == '+' || r == ' '
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.DetectorURL == "" {
		missing = append(missing, "DETECTOR_URL")
	}
	if c.YoloModelPath == "" {
		missing = append(missing, "YOLO_MODEL_PATH")
	}
	if c.CaptionModelName == "" {
		missing = append(missing, "CAPTION_MODEL_NAME")
	}
	if c.CaptionModelPath == "" {
		missing = append(missing, "CAPTION_MODEL_PATH")
	}
	if c.PersistResults {
		if c.InputFolder == "" {
			missing = append(missing, "INPUT_FOLDER")
		}
		if c.OutputFolder == "" {
			missing = append(missing, "OUTPUT_FOLDER")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	if c.BoxThreshold < 0 || c.BoxThreshold > 1 {
		return fmt.Errorf("BOX_THRESHOLD must be within [0, 1], got %v", c.BoxThreshold)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return fmt.Errorf("IOU_THRESHOLD must be within [0, 1], got %v", c.IoUThreshold)
	}
	if c.InferenceTimeout <= 0 {
		return fmt.Errorf("INFERENCE_TIMEOUT must be positive, got %v", c.InferenceTimeout)
	}
	if c.MaxConcurrentBuilds < 1 {
		return fmt.Errorf("MAX_CONCURRENT_BUILDS must be at least 1")
	}
	return nil
}
