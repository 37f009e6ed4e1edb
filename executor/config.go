package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/logging"
	"github.com/lfedgeai/taskcat/pkg/utils"
)

type Config struct {
	ServerURL string
	// APIKey is only sent when Remote is set.
	APIKey string
	Remote bool

	InputFolder    string
	OutputFolder   string
	RequestTimeout time.Duration

	Log logging.Config
}

// LoadConfig builds the executor configuration. With remote unset the
// local build service is used without authentication.
func LoadConfig(envFile string, remote bool, serverURL, apiKey string) (*Config, error) {
	if err := utils.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("request_timeout", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age", 30)

	cfg := &Config{
		ServerURL:      common.LocalServerURL,
		Remote:         remote,
		InputFolder:    v.GetString("input_folder"),
		OutputFolder:   v.GetString("output_folder"),
		RequestTimeout: v.GetDuration("request_timeout"),
		Log: logging.Config{
			Level:      v.GetString("log_level"),
			LogFile:    v.GetString("log_file"),
			MaxSizeMB:  v.GetInt("log_max_size"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAgeDays: v.GetInt("log_max_age"),
		},
	}
	if remote {
		cfg.ServerURL = strings.TrimRight(serverURL, "/")
		cfg.APIKey = apiKey
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.InputFolder == "" || c.OutputFolder == "" {
		return fmt.Errorf("INPUT_FOLDER and OUTPUT_FOLDER must be set")
	}
	if c.Remote && c.ServerURL == "" {
		return fmt.Errorf("remote server URL is empty")
	}
	return nil
}
