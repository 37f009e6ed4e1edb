package som

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Action string

const (
	ActionClick Action = "click"
	ActionType  Action = "type"
	ActionWait  Action = "wait"
)

// ParseAction normalizes an action name. Unknown names are returned as is
// together with ok == false.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionClick, ActionType, ActionWait:
		return a, true
	}
	return a, false
}

// NeedsTarget reports whether the action is performed on an element.
func (a Action) NeedsTarget() bool {
	return a == ActionClick || a == ActionType
}

// Coordinates is an element box in (x, y, width, height) pixel form.
type Coordinates [4]float64

// Center returns the click point of the box.
//
// The point is computed as (x1 + x2/2, y1 + y2/2). With xywh coordinates
// that is the centre of the box.
func (c Coordinates) Center() (int, int) {
	x1, y1, x2, y2 := c[0], c[1], c[2], c[3]
	x := x1 + x2/2
	y := y1 + y2/2
	return int(x), int(y)
}

// ActionPlan is the single next step chosen by the planner.
type ActionPlan struct {
	Action      Action       `json:"ACTION"`
	Element     string       `json:"ELEMENT"`
	Details     string       `json:"DETAILS"`
	Coordinates *Coordinates `json:"COORDINATES,omitempty"`
}

// Executable reports whether the plan carries everything needed to be
// replayed on the desktop.
func (p *ActionPlan) Executable() bool {
	switch p.Action {
	case ActionWait:
		return true
	case ActionClick, ActionType:
		return p.Coordinates != nil
	}
	return false
}

// TaskRequest is one planning round's input.
type TaskRequest struct {
	Task  string
	Image []byte
}

func (r *TaskRequest) Validate() error {
	if strings.TrimSpace(r.Task) == "" {
		return fmt.Errorf("task is empty")
	}
	if len(r.Image) == 0 {
		return fmt.Errorf("image is empty")
	}
	return nil
}

// BuildResult is what the build service returns for one round. ResultImage
// is the annotated screenshot as base64 encoded PNG.
type BuildResult struct {
	ResultJSON  ActionPlan `json:"result_json"`
	ResultImage string     `json:"result_image"`
}

func (r *BuildResult) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *BuildResult) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}
