// Package mock provides an in-memory BsaCore IOC for tests and dry runs.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hmbui/bsacore-test/pkg/bsa"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

// DefaultPulseStride is the pulse-id step between raw samples at 120 Hz on
// a 360 Hz timing base.
const DefaultPulseStride = 3

// DefaultStartPulseID is the first pulse id of every simulated history.
const DefaultStartPulseID = 10000

// Put is a recorded write.
type Put struct {
	Name  string
	Value string
}

// IOC simulates the EDEF records and result histories of a BsaCore IOC.
// It implements pv.Client and is safe for concurrent use.
type IOC struct {
	// TestPV is the prefix of the history PVs.
	TestPV string

	// BasePV is the EDEF namespace.
	BasePV string

	// ReservationPV assigns the first free slot when written.
	ReservationPV string

	// PulseStride is the pulse-id step between raw samples.
	PulseStride int64

	// StartPulseID is the first value of each history.
	StartPulseID int64

	scalars   *xsync.MapOf[string, string]
	waveforms *xsync.MapOf[string, []int64]
	putErrs   *xsync.MapOf[string, string]
	getErrs   *xsync.MapOf[string, string]
	overrides *xsync.MapOf[int, []int64]

	mu   sync.Mutex
	puts []Put
	gets []string
}

// NewIOC creates an IOC under the default EDEF namespace with all slots
// unreserved.
func NewIOC(testPV string) *IOC {
	return NewIOCAt(testPV, bsa.DefaultBasePV)
}

// NewIOCAt creates an IOC whose EDEF records live under basePV.
func NewIOCAt(testPV, basePV string) *IOC {
	ioc := &IOC{
		TestPV:        testPV,
		BasePV:        basePV,
		ReservationPV: bsa.DefaultReservationPV,
		PulseStride:   DefaultPulseStride,
		StartPulseID:  DefaultStartPulseID,
		scalars:       xsync.NewMapOf[string, string](),
		waveforms:     xsync.NewMapOf[string, []int64](),
		putErrs:       xsync.NewMapOf[string, string](),
		getErrs:       xsync.NewMapOf[string, string](),
		overrides:     xsync.NewMapOf[int, []int64](),
	}
	for slot := 1; slot <= bsa.MaxSlotCount; slot++ {
		ioc.resetSlot(slot)
	}
	return ioc
}

func (i *IOC) resetSlot(slot int) {
	set := func(field, v string) { i.scalars.Store(pv.Name(i.BasePV, slot, field), v) }
	set(bsa.FieldName, "")
	for n := 1; n <= bsa.InclusionMaskCount; n++ {
		set(bsa.FieldInclusion+strconv.Itoa(n), "0")
	}
	for n := 1; n <= bsa.ExclusionMaskCount; n++ {
		set(bsa.FieldExclusion+strconv.Itoa(n), "0")
	}
	set(bsa.FieldMeasCount, "0")
	set(bsa.FieldAvgCount, "1")
	set(bsa.FieldControl, "0")
}

// Reserve names a slot directly.
func (i *IOC) Reserve(slot int, name string) {
	i.scalars.Store(pv.Name(i.BasePV, slot, bsa.FieldName), name)
}

// FailPut makes every write to name report errText.
func (i *IOC) FailPut(name, errText string) {
	i.putErrs.Store(name, errText)
}

// FailGet makes every read of name report errText.
func (i *IOC) FailGet(name, errText string) {
	i.getErrs.Store(name, errText)
}

// SetHistory replaces the pulse-id history the next run of slot produces.
func (i *IOC) SetHistory(slot int, values []int64) {
	i.overrides.Store(slot, values)
}

// Value returns the current value of a scalar PV.
func (i *IOC) Value(name string) (string, bool) {
	return i.scalars.Load(name)
}

// Puts returns the writes received so far, in order.
func (i *IOC) Puts() []Put {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Put(nil), i.puts...)
}

// Gets returns the PV names read so far, in order.
func (i *IOC) Gets() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.gets...)
}

// Get implements pv.Client.
func (i *IOC) Get(ctx context.Context, name string) (pv.Output, error) {
	if err := ctx.Err(); err != nil {
		return pv.Output{}, err
	}
	i.mu.Lock()
	i.gets = append(i.gets, name)
	i.mu.Unlock()

	if errText, ok := i.getErrs.Load(name); ok {
		return pv.Output{ErrText: errText, ExitCode: 1}, nil
	}
	if v, ok := i.scalars.Load(name); ok {
		return pv.Output{Text: name + " " + v + "\n"}, nil
	}
	if w, ok := i.waveforms.Load(name); ok {
		return pv.Output{Text: formatWaveform(name, w)}, nil
	}
	return notFound(name), nil
}

// Put implements pv.Client.
func (i *IOC) Put(ctx context.Context, name, value string) (pv.Output, error) {
	if err := ctx.Err(); err != nil {
		return pv.Output{}, err
	}
	i.mu.Lock()
	i.puts = append(i.puts, Put{Name: name, Value: value})
	i.mu.Unlock()

	if errText, ok := i.putErrs.Load(name); ok {
		return pv.Output{ErrText: errText, ExitCode: 1}, nil
	}
	if name == i.ReservationPV {
		return i.reserveFree(name, value), nil
	}

	old, ok := i.scalars.Load(name)
	if !ok {
		return notFound(name), nil
	}
	i.scalars.Store(name, value)

	if slot, field, ok := i.splitEDEF(name); ok && field == bsa.FieldControl && value == "1" {
		i.acquire(slot)
	}
	return pv.Output{Text: fmt.Sprintf("Old : %s %s\nNew : %s %s\n", name, old, name, value)}, nil
}

func (i *IOC) reserveFree(name, edef string) pv.Output {
	for slot := 1; slot <= bsa.MaxSlotCount; slot++ {
		key := pv.Name(i.BasePV, slot, bsa.FieldName)
		if v, _ := i.scalars.Load(key); v == "" {
			i.scalars.Store(key, edef)
			return pv.Output{Text: fmt.Sprintf("Old : %s \nNew : %s %s\n", name, name, edef)}
		}
	}
	return pv.Output{ErrText: "no free EDEF slot for " + edef + "\n", ExitCode: 1}
}

// acquire fills the history PVs of slot as if the run had completed.
func (i *IOC) acquire(slot int) {
	count := i.intField(slot, bsa.FieldMeasCount, 0)
	avg := i.intField(slot, bsa.FieldAvgCount, 1)
	if avg < 1 {
		avg = 1
	}

	history, ok := i.overrides.LoadAndDelete(slot)
	if !ok {
		history = make([]int64, count)
		step := int64(avg) * i.PulseStride
		for n := range history {
			history[n] = i.StartPulseID + int64(n)*step
		}
	}
	counts := make([]int64, len(history))
	for n := range counts {
		counts[n] = int64(avg)
	}

	i.waveforms.Store(pv.Name(i.TestPV, 0, bsa.FieldPulseIDHist+strconv.Itoa(slot)), history)
	i.waveforms.Store(pv.Name(i.TestPV, 1, bsa.FieldCountHist+strconv.Itoa(slot)), counts)
	i.scalars.Store(pv.Name(i.BasePV, slot, bsa.FieldControl), "0")
}

func (i *IOC) intField(slot int, field string, def int) int {
	v, ok := i.scalars.Load(pv.Name(i.BasePV, slot, field))
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// splitEDEF parses "<BasePV>:<slot>:<field>".
func (i *IOC) splitEDEF(name string) (int, string, bool) {
	rest, ok := strings.CutPrefix(name, i.BasePV+":")
	if !ok {
		return 0, "", false
	}
	slotStr, field, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, "", false
	}
	slot, err := strconv.Atoi(slotStr)
	if err != nil {
		return 0, "", false
	}
	return slot, field, true
}

func formatWaveform(name string, values []int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", name, len(values))
	for _, v := range values {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(v, 10))
	}
	b.WriteByte('\n')
	return b.String()
}

func notFound(name string) pv.Output {
	return pv.Output{
		ErrText:  fmt.Sprintf("Channel connect timed out: '%s' not found.\n", name),
		ExitCode: 1,
	}
}

var _ pv.Client = (*IOC)(nil)
