package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hmbui/bsacore-test/internal/testharness/engine"
	"github.com/hmbui/bsacore-test/internal/testharness/loader"
	"github.com/hmbui/bsacore-test/pkg/bsa"
	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

var errNoSession = errors.New("no EDEF slot located; add a locate_slot step first")

func (r *Runner) registerHandlers() {
	for action, h := range map[string]engine.ActionHandler{
		ActionLocateSlot:        r.handleLocateSlot,
		ActionSetupMasking:      r.handleSetupMasking,
		ActionSetupMeasurement:  r.handleSetupMeasurement,
		ActionRun:               r.handleRun,
		ActionVerifyResult:      r.handleVerifyResult,
		ActionCheckCountHistory: r.handleCheckCountHistory,
		ActionWait:              r.handleWait,
	} {
		r.engine.RegisterHandler(action, withTestID(h))
	}
}

// withTestID tags the handler context so trace events carry the test ID.
func withTestID(h engine.ActionHandler) engine.ActionHandler {
	return func(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
		if state.TestCase != nil {
			ctx = log.WithTestID(ctx, state.TestCase.ID)
		}
		return h(ctx, step, state)
	}
}

func session(state *engine.ExecutionState) (*bsa.Session, error) {
	s, ok := state.Custom[stateSession].(*bsa.Session)
	if !ok {
		return nil, errNoSession
	}
	return s, nil
}

func (r *Runner) handleLocateSlot(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	edef := r.config.EDEFName
	if v, ok := step.Params[ParamEDEFName].(string); ok && v != "" {
		edef = v
	}
	reserve, _ := step.Params[ParamReserve].(bool)

	name := edef
	if state.TestCase != nil {
		name = state.TestCase.Name
	}
	s, err := bsa.New(ctx, bsa.Config{
		Client:        r.config.Client,
		TestName:      name,
		TestPV:        r.config.TestPV,
		EDEFName:      edef,
		BasePV:        r.config.BasePV,
		Reserve:       reserve,
		ReservationPV: r.config.ReservationPV,
		Logger:        r.logger,
		Waiter:        r.waiter,
		Recorder:      r.config.Recorder,
	})
	if err != nil {
		return nil, err
	}
	state.Custom[stateSession] = s
	return map[string]any{
		KeySlot:     s.Slot(),
		KeyEDEFName: edef,
	}, nil
}

func (r *Runner) handleSetupMasking(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	s, err := session(state)
	if err != nil {
		return nil, err
	}
	inclusion, err := paramMasks(step.Params, ParamInclusion)
	if err != nil {
		return nil, err
	}
	exclusion, err := paramMasks(step.Params, ParamExclusion)
	if err != nil {
		return nil, err
	}
	if err := s.SetupMasking(ctx, inclusion, exclusion); err != nil {
		return nil, err
	}
	return map[string]any{KeyMasked: true}, nil
}

func (r *Runner) handleSetupMeasurement(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	s, err := session(state)
	if err != nil {
		return nil, err
	}
	if _, ok := step.Params[ParamMeasurementCount]; !ok {
		return nil, fmt.Errorf("parameter %s is required", ParamMeasurementCount)
	}
	meas, err := paramInt(step.Params, ParamMeasurementCount, 0)
	if err != nil {
		return nil, err
	}
	avg, err := paramInt(step.Params, ParamAverageSamples, 1)
	if err != nil {
		return nil, err
	}
	if err := s.SetupMeasurement(ctx, meas, avg); err != nil {
		return nil, err
	}
	return map[string]any{KeyConfigured: true}, nil
}

func (r *Runner) handleRun(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	s, err := session(state)
	if err != nil {
		return nil, err
	}
	d := r.config.Wait
	if d <= 0 {
		var set bool
		if d, set = paramDuration(step.Params); !set {
			d = bsa.DefaultWait
		}
	}

	delete(state.Custom, stateResultText)
	out, err := s.Run(ctx, d)
	if errors.Is(err, bsa.ErrRun) {
		return map[string]any{KeyRunOK: false, KeyResultError: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	state.Custom[stateResultText] = out.Text
	return map[string]any{
		KeyRunOK:       true,
		KeyResultText:  strings.TrimSpace(out.Text),
		KeyResultError: strings.TrimSpace(out.ErrText),
	}, nil
}

func (r *Runner) handleVerifyResult(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	s, err := session(state)
	if err != nil {
		return nil, err
	}
	text, ok := state.Custom[stateResultText].(string)
	if !ok {
		return nil, errors.New("no result history; add a successful run step first")
	}
	interval, err := paramInt(step.Params, ParamExpectedInterval, bsa.DefaultInterval)
	if err != nil {
		return nil, err
	}
	skip, err := paramInt(step.Params, ParamSkipTokens, DefaultSkipTokens)
	if err != nil {
		return nil, err
	}

	v := s.Verify(ctx, pv.Waveform(text, skip), interval)
	outputs := map[string]any{
		KeyVerified:   v.Passed,
		KeyTokenCount: v.Count,
	}
	if !v.Passed {
		outputs[KeyFailureIndex] = v.Index
		outputs[KeyFailureReason] = string(v.Reason)
	}
	return outputs, nil
}

func (r *Runner) handleCheckCountHistory(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	s, err := session(state)
	if err != nil {
		return nil, err
	}
	err = s.CheckCountHistory(ctx)
	if errors.Is(err, bsa.ErrRun) {
		return map[string]any{KeyCountHistoryOK: false, KeyResultError: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{KeyCountHistoryOK: true}, nil
}

func (r *Runner) handleWait(ctx context.Context, step *loader.Step, state *engine.ExecutionState) (map[string]any, error) {
	d, set := paramDuration(step.Params)
	if !set {
		d = bsa.DefaultWait
	}
	if err := r.waiter.Wait(ctx, d); err != nil {
		return nil, err
	}
	return map[string]any{KeyWaited: true}, nil
}
