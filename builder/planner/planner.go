// Package planner asks the hosted model for the next UI action and resolves
// the referenced element to pixel coordinates.
package planner

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/builder/llm"
	"github.com/lfedgeai/taskcat/pkg/som"
)

// Resolver maps element IDs to the boxes drawn for the same round.
type Resolver interface {
	Lookup(id int) (som.Coordinates, bool)
}

type Planner struct {
	client    llm.Client
	mode      ParseMode
	maxTokens int
}

func New(client llm.Client, mode ParseMode) *Planner {
	return &Planner{client: client, mode: mode, maxTokens: llm.DefaultMaxTokens}
}

// Plan issues exactly one model request. Malformed replies and unknown
// element references are returned as errors; nothing is retried here.
func (p *Planner) Plan(ctx context.Context, task string, elements []string,
	boxes Resolver) (*som.ActionPlan, error) {
	raw, err := p.client.Complete(ctx, llm.Request{
		System:    SystemPrompt(p.mode),
		User:      UserPrompt(task, elements),
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	log.Debugf("Planner reply: %s", raw)

	plan, err := Parse(raw, p.mode)
	if err != nil {
		return nil, err
	}
	if err := Resolve(plan, boxes); err != nil {
		return nil, err
	}
	log.Infof("Planned %s on %q", plan.Action, plan.Element)
	return plan, nil
}

// Resolve fills in the plan's coordinates. Wait plans only get coordinates
// when they name a known element.
func Resolve(plan *som.ActionPlan, boxes Resolver) error {
	id, err := som.ElementID(plan.Element)
	if plan.Action == som.ActionWait {
		if err == nil {
			if c, ok := boxes.Lookup(id); ok {
				plan.Coordinates = &c
			}
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownElement, err)
	}
	c, ok := boxes.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: id %d is not on screen", ErrUnknownElement, id)
	}
	plan.Coordinates = &c
	return nil
}
