package bsa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hmbui/bsacore-test/pkg/log"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

// Config configures a Session.
type Config struct {
	// Client reads and writes PVs. Required.
	Client pv.Client

	// TestName labels log lines. Defaults to EDEFName.
	TestName string

	// TestPV is the prefix of the result history PVs. Required.
	TestPV string

	// EDEFName is the reservation name to look for. Required.
	EDEFName string

	// BasePV is the EDEF namespace. Defaults to DefaultBasePV.
	BasePV string

	// Reserve writes EDEFName to ReservationPV before locating the slot.
	Reserve       bool
	ReservationPV string

	Logger   *slog.Logger
	Waiter   Waiter
	Recorder *log.Recorder
}

// Session drives one EDEF slot.
type Session struct {
	client   pv.Client
	name     string
	testPV   string
	edefName string
	basePV   string
	slot     int
	logger   *slog.Logger
	waiter   Waiter
	rec      *log.Recorder
}

// New validates cfg, optionally reserves a slot, and locates the slot
// carrying cfg.EDEFName. It returns no session unless a slot was found.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, errors.New("bsa: Config.Client is required")
	}
	if cfg.TestPV == "" {
		return nil, errors.New("bsa: Config.TestPV is required")
	}
	if cfg.EDEFName == "" {
		return nil, errors.New("bsa: Config.EDEFName is required")
	}

	s := &Session{
		client:   cfg.Client,
		name:     cfg.TestName,
		testPV:   cfg.TestPV,
		edefName: cfg.EDEFName,
		basePV:   cfg.BasePV,
		logger:   cfg.Logger,
		waiter:   cfg.Waiter,
		rec:      cfg.Recorder,
	}
	if s.name == "" {
		s.name = cfg.EDEFName
	}
	if s.basePV == "" {
		s.basePV = DefaultBasePV
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.waiter == nil {
		s.waiter = NewCountdownWaiter(os.Stdout)
	}
	s.logger = s.logger.With("test", s.name)

	if cfg.Reserve {
		reservation := cfg.ReservationPV
		if reservation == "" {
			reservation = DefaultReservationPV
		}
		if err := s.reserve(ctx, reservation); err != nil {
			return nil, err
		}
	}

	slot, err := LocateSlot(ctx, s.client, s.basePV, s.edefName, s.logger)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Cannot find the slot number of EDEF '%s'.", s.edefName), "error", err)
		s.rec.Error(ctx, err, "locate slot")
		return nil, err
	}
	s.slot = slot
	s.rec.State(ctx, log.StateEntitySlot, "", strconv.Itoa(slot), "located "+s.edefName)
	s.logger.Info("EDEF slot located", "edef", s.edefName, "slot", slot)
	return s, nil
}

// LocateSlot reads the NAME field of slots 1..MaxSlotCount under basePV and
// returns the first slot whose value contains edefName.
func LocateSlot(ctx context.Context, client pv.Client, basePV, edefName string, logger *slog.Logger) (int, error) {
	if edefName == "" {
		return 0, errors.New("bsa: empty edef name")
	}
	for slot := 1; slot <= MaxSlotCount; slot++ {
		name := pv.Name(basePV, slot, FieldName)
		out, err := client.Get(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", name, err)
		}
		if strings.Contains(pv.Value(out.Text, name), edefName) {
			return slot, nil
		}
		if logger != nil {
			logger.Debug("slot does not match", "slot", slot, "value", strings.TrimSpace(out.Text))
		}
	}
	return 0, fmt.Errorf("%w: no slot in 1..%d is named %q", ErrSlotNotFound, MaxSlotCount, edefName)
}

func (s *Session) reserve(ctx context.Context, reservationPV string) error {
	out, err := s.client.Put(ctx, reservationPV, s.edefName)
	if err != nil {
		return fmt.Errorf("reserving edef %q: %w", s.edefName, err)
	}
	s.warnOnErrText(reservationPV, out)
	s.rec.State(ctx, log.StateEntitySlot, "", "reserved", s.edefName)
	return nil
}

// Slot returns the located slot number.
func (s *Session) Slot() int { return s.slot }

// Name returns the test name used in log lines.
func (s *Session) Name() string { return s.name }

// Field returns the full PV name of field under this session's slot.
func (s *Session) Field(field string) string {
	return pv.Name(s.basePV, s.slot, field)
}

// ResultPV returns the pulse-id history PV read after a run.
func (s *Session) ResultPV() string {
	return pv.Name(s.testPV, variantPulseID, FieldPulseIDHist+strconv.Itoa(s.slot))
}

// CountHistoryPV returns the pulse-id count history PV.
func (s *Session) CountHistoryPV() string {
	return pv.Name(s.testPV, variantCount, FieldCountHist+strconv.Itoa(s.slot))
}

// SetupMasking writes the inclusion masks then the exclusion masks. Both
// lists must have exactly five entries; nothing is written otherwise.
// Writes already applied are not undone if a later write fails.
func (s *Session) SetupMasking(ctx context.Context, inclusion, exclusion []uint32) error {
	if len(inclusion) != InclusionMaskCount {
		err := &MaskCountError{Kind: MaskInclusion, Got: len(inclusion), Want: InclusionMaskCount}
		s.logger.Error(err.Error())
		return err
	}
	if len(exclusion) != ExclusionMaskCount {
		err := &MaskCountError{Kind: MaskExclusion, Got: len(exclusion), Want: ExclusionMaskCount}
		s.logger.Error(err.Error())
		return err
	}

	for i, m := range inclusion {
		if err := s.write(ctx, FieldInclusion+strconv.Itoa(i+1), strconv.FormatUint(uint64(m), 10)); err != nil {
			return err
		}
	}
	for i, m := range exclusion {
		if err := s.write(ctx, FieldExclusion+strconv.Itoa(i+1), strconv.FormatUint(uint64(m), 10)); err != nil {
			return err
		}
	}
	return nil
}

// SetupMeasurement writes the measurement count then the averaging sample
// count. Values are passed through unvalidated. Both writes are attempted
// even if the first one cannot run.
func (s *Session) SetupMeasurement(ctx context.Context, measurementCount, averageSamples int) error {
	return errors.Join(
		s.write(ctx, FieldMeasCount, strconv.Itoa(measurementCount)),
		s.write(ctx, FieldAvgCount, strconv.Itoa(averageSamples)),
	)
}

// Run starts acquisition, waits for d, and reads the pulse-id history.
// d < 0 waits DefaultWait and d == 0 reads back at once. A start that
// reports any error text returns ErrRun without waiting.
func (s *Session) Run(ctx context.Context, d time.Duration) (pv.Output, error) {
	if d < 0 {
		d = DefaultWait
	}

	ctrl := s.Field(FieldControl)
	out, err := s.client.Put(ctx, ctrl, "1")
	if err != nil {
		s.logger.Error("Test run error", "pv", ctrl, "error", err)
		s.rec.Error(ctx, err, "start run")
		return pv.Output{}, fmt.Errorf("%w: starting %s: %v", ErrRun, ctrl, err)
	}
	if out.Failed() {
		s.logger.Error("Test run error", "pv", ctrl, "stderr", strings.TrimSpace(out.ErrText))
		s.rec.State(ctx, log.StateEntityRun, "idle", "error", strings.TrimSpace(out.ErrText))
		return pv.Output{}, fmt.Errorf("%w: starting %s", ErrRun, ctrl)
	}
	s.rec.State(ctx, log.StateEntityRun, "idle", "acquiring", "")

	if err := s.waiter.Wait(ctx, d); err != nil {
		return pv.Output{}, fmt.Errorf("waiting for acquisition: %w", err)
	}

	result := s.ResultPV()
	out, err = s.client.Get(ctx, result)
	if err != nil {
		return pv.Output{}, fmt.Errorf("reading %s: %w", result, err)
	}
	s.rec.State(ctx, log.StateEntityRun, "acquiring", "complete", "")
	return out, nil
}

// Verify checks tokens with VerifySequence, logs the outcome and records it.
func (s *Session) Verify(ctx context.Context, tokens []string, interval int) Verification {
	v := VerifySequence(tokens, interval)
	s.logVerification(v, interval)

	ev := log.VerificationEvent{
		Passed:   v.Passed,
		Count:    v.Count,
		Interval: interval,
		Index:    v.Index,
		Previous: v.Previous,
		Current:  v.Current,
		Reason:   string(v.Reason),
	}
	s.rec.Verification(ctx, ev)
	return v
}

func (s *Session) logVerification(v Verification, interval int) {
	switch v.Reason {
	case ReasonNone:
		s.logger.Info(fmt.Sprintf("Test '%s' verified %d values at interval %d.", s.name, v.Count, interval))
	case ReasonEmpty:
		s.logger.Error(fmt.Sprintf("Test '%s' FAILED: Empty result.", s.name))
	case ReasonConversion:
		s.logger.Error(fmt.Sprintf("Test '%s' FAILED at index %d: %v", s.name, v.Index, v.Err))
	case ReasonDecrease:
		s.logger.Error(fmt.Sprintf("Test '%s' FAILED at index %d: current value %d is less than the previous value %d",
			s.name, v.Index, v.Current, v.Previous))
	case ReasonInterval:
		s.logger.Error(fmt.Sprintf("Test '%s' FAILED at index %d: the interval between current value %d and the previous value %d is not the expected interval of %d.",
			s.name, v.Index, v.Current, v.Previous, interval))
	}
}

// CheckCountHistory reads the count history PV. Any error text is ErrRun.
func (s *Session) CheckCountHistory(ctx context.Context) error {
	name := s.CountHistoryPV()
	out, err := s.client.Get(ctx, name)
	if err != nil {
		s.logger.Error("Test run error", "pv", name, "error", err)
		return fmt.Errorf("%w: reading %s: %v", ErrRun, name, err)
	}
	if out.Failed() {
		s.logger.Error("Test run error", "pv", name, "stderr", strings.TrimSpace(out.ErrText))
		s.rec.Error(ctx, ErrRun, "count history "+name)
		return fmt.Errorf("%w: reading %s", ErrRun, name)
	}
	return nil
}

func (s *Session) write(ctx context.Context, field, value string) error {
	name := s.Field(field)
	out, err := s.client.Put(ctx, name, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	s.warnOnErrText(name, out)
	return nil
}

func (s *Session) warnOnErrText(name string, out pv.Output) {
	if out.Failed() {
		s.logger.Warn("write reported an error", "pv", name, "stderr", strings.TrimSpace(out.ErrText))
	}
}
