package common

import "time"

const MaxUploadSize = 32 << 20

const (
	LocalServerURL = "http://localhost:8000"
	BuildPath      = "/build/"
	HealthPath     = "/health"
	MetricsPath    = "/metrics"
)

const (
	WaitActionDuration = 5 * time.Second
	PostClickDelay     = 1 * time.Second
	PageSettleDelay    = 2 * time.Second
)

const (
	ScreenshotFileName = "screenshot.png"
	LabeledFileName    = "labeled_screenshot.png"
	ResultFileName     = "result.json"
	TaskFileName       = "task.json"
)
