// Package executor drives the live desktop: it captures the screen, asks the
// build service for the next action and replays it as synthetic input.
package executor

import (
	"context"
	"image"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/common"
	"github.com/lfedgeai/taskcat/pkg/som"
)

type Screen interface {
	Capture() (image.Image, error)
}

type Input interface {
	Click(x, y int) error
	Type(text string) error
	PressEnter() error
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Executor struct {
	screen  Screen
	input   Input
	client  BuildClient
	results *Results
	sleep   Sleeper
}

func New(screen Screen, input Input, client BuildClient, results *Results) *Executor {
	return &Executor{
		screen:  screen,
		input:   input,
		client:  client,
		results: results,
		sleep:   sleepCtx,
	}
}

// WithSleeper replaces the pause used by click and wait actions.
func (e *Executor) WithSleeper(s Sleeper) *Executor {
	e.sleep = s
	return e
}

// Run loops capture, request and execute until an error occurs or ctx is
// cancelled. There is no other exit condition.
func (e *Executor) Run(ctx context.Context, task string) error {
	if _, err := e.results.SaveTask(task); err != nil {
		return err
	}
	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(ctx, idx, task); err != nil {
			return err
		}
	}
}

// Step runs one round.
func (e *Executor) Step(ctx context.Context, idx int, task string) error {
	img, err := e.screen.Capture()
	if err != nil {
		return err
	}
	shot, err := e.results.SaveScreenshot(idx, img)
	if err != nil {
		return err
	}
	res, err := e.client.Build(ctx, shot, task)
	if err != nil {
		return err
	}
	if err := e.results.SaveResult(idx, res); err != nil {
		return err
	}
	return e.Perform(ctx, &res.ResultJSON)
}

// Perform replays one plan. Unsupported actions and click or type plans
// without coordinates are logged and skipped.
func (e *Executor) Perform(ctx context.Context, plan *som.ActionPlan) error {
	if !plan.Executable() {
		log.Warnf("Unsupported action %q or missing coordinates, skipping", plan.Action)
		return nil
	}
	if plan.Action == som.ActionWait {
		log.Infof("Waiting %v", common.WaitActionDuration)
		return e.sleep(ctx, common.WaitActionDuration)
	}
	x, y := plan.Coordinates.Center()
	log.Infof("Clicking at (%d, %d)", x, y)
	if err := e.input.Click(x, y); err != nil {
		return err
	}
	if plan.Action == som.ActionClick {
		return e.sleep(ctx, common.PostClickDelay)
	}
	log.Infof("Typing at %v", *plan.Coordinates)
	if err := e.input.Type(plan.Details); err != nil {
		return err
	}
	return e.input.PressEnter()
}
