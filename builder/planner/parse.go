package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/lfedgeai/taskcat/pkg/som"
)

var (
	ErrMalformedResponse = errors.New("malformed planner response")
	ErrUnknownElement    = errors.New("unknown element")
)

type ParseMode int

const (
	ParseStrict ParseMode = iota
	ParseLegacy
)

func (m ParseMode) String() string {
	if m == ParseLegacy {
		return "legacy"
	}
	return "strict"
}

func ParseModeFromString(s string) (ParseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ParseStrict, nil
	case "legacy":
		return ParseLegacy, nil
	}
	return ParseStrict, fmt.Errorf("unknown parse mode %q", s)
}

// legacyLines is the number of meaningful lines the positional parser
// accepts: the opening brace and the three fields.
const legacyLines = 4

var (
	fenceRegex   = regexp.MustCompile("(?s)^\x60\x60\x60(?:json)?\\s*(.*?)\\s*\x60\x60\x60$")
	elementRegex = regexp.MustCompile(`^"?(Text|Icon) Box ID (\d+):`)
)

// Parse turns the raw model reply into a plan without coordinates.
func Parse(resp string, mode ParseMode) (*som.ActionPlan, error) {
	if mode == ParseLegacy {
		return parseLegacy(resp)
	}
	return parseStrict(resp)
}

type strictPlan struct {
	Action  *string `json:"ACTION"`
	Element *string `json:"ELEMENT"`
	Details *string `json:"DETAILS"`
}

func parseStrict(resp string) (*som.ActionPlan, error) {
	body := strings.TrimSpace(resp)
	if m := fenceRegex.FindStringSubmatch(body); m != nil {
		body = m[1]
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	var sp strictPlan
	if err := dec.Decode(&sp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content after instruction", ErrMalformedResponse)
	}
	if sp.Action == nil || sp.Element == nil || sp.Details == nil {
		return nil, fmt.Errorf("%w: ACTION, ELEMENT and DETAILS are all required", ErrMalformedResponse)
	}

	action, ok := som.ParseAction(*sp.Action)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported action %q", ErrMalformedResponse, *sp.Action)
	}
	element := strings.TrimSpace(*sp.Element)
	if action.NeedsTarget() && !elementRegex.MatchString(element) {
		return nil, fmt.Errorf("%w: element reference %q", ErrMalformedResponse, element)
	}
	return &som.ActionPlan{
		Action:  action,
		Element: element,
		Details: *sp.Details,
	}, nil
}

type legacyPlan struct {
	Action  string `json:"ACTION"`
	Element string `json:"ELEMENT"`
	Details string `json:"DETAILS"`
}

// parseLegacy keeps the positional contract of the first four lines: an
// opening brace and one line per field. A closing brace is appended before
// decoding. Replies with more or fewer meaningful lines are rejected.
func parseLegacy(resp string) (*som.ActionPlan, error) {
	var lines []string
	for _, l := range strings.Split(resp, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "}" {
		lines = lines[:n-1]
	}
	if len(lines) != legacyLines {
		return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrMalformedResponse,
			legacyLines, len(lines))
	}
	if strings.TrimSpace(lines[0]) != "{" {
		return nil, fmt.Errorf("%w: reply does not start with an instruction", ErrMalformedResponse)
	}

	var lp legacyPlan
	buf := bytes.NewBufferString(strings.Join(lines, "\n") + "\n}")
	if err := json.Unmarshal(buf.Bytes(), &lp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	action, _ := som.ParseAction(lp.Action)
	return &som.ActionPlan{
		Action:  action,
		Element: lp.Element,
		Details: lp.Details,
	}, nil
}
