package mock_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hmbui/bsacore-test/internal/testharness/mock"
	"github.com/hmbui/bsacore-test/pkg/pv"
)

func TestIOCScalarRoundTrip(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	ctx := context.Background()

	out, err := ioc.Put(ctx, "EDEF:SYS0:3:MEASCNT", "2800")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if out.Failed() {
		t.Fatalf("Put reported error: %q", out.ErrText)
	}
	if !strings.Contains(out.Text, "New : EDEF:SYS0:3:MEASCNT 2800") {
		t.Errorf("unexpected put output %q", out.Text)
	}

	out, _ = ioc.Get(ctx, "EDEF:SYS0:3:MEASCNT")
	if got := pv.Value(out.Text, "EDEF:SYS0:3:MEASCNT"); got != "2800" {
		t.Errorf("Get value = %q, want 2800", got)
	}
}

func TestIOCUnknownPV(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")

	for _, out := range []pv.Output{
		mustGet(t, ioc, "NOPE:1"),
		mustPut(t, ioc, "NOPE:1", "1"),
	} {
		if !out.Failed() || !strings.Contains(out.ErrText, "not found") {
			t.Errorf("expected not-found error, got %+v", out)
		}
	}
}

func TestIOCReservationAssignsFirstFreeSlot(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	ioc.Reserve(1, "OTHER")

	out := mustPut(t, ioc, ioc.ReservationPV, "BSACORE_TEST")
	if out.Failed() {
		t.Fatalf("reservation failed: %q", out.ErrText)
	}
	if v, _ := ioc.Value("EDEF:SYS0:2:NAME"); v != "BSACORE_TEST" {
		t.Errorf("slot 2 name = %q", v)
	}
}

func TestIOCReservationFull(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	for slot := 1; slot <= 20; slot++ {
		ioc.Reserve(slot, "TAKEN")
	}
	if out := mustPut(t, ioc, ioc.ReservationPV, "X"); !out.Failed() {
		t.Error("expected failure when all slots are taken")
	}
}

func TestIOCRunProducesHistory(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	mustPut(t, ioc, "EDEF:SYS0:5:MEASCNT", "4")
	mustPut(t, ioc, "EDEF:SYS0:5:AVGCNT", "3")
	mustPut(t, ioc, "EDEF:SYS0:5:CTRL", "1")

	out := mustGet(t, ioc, "TST:SYS0:0:PULSEIDHST5")
	want := "TST:SYS0:0:PULSEIDHST5 4 10000 10009 10018 10027\n"
	if out.Text != want {
		t.Errorf("history = %q, want %q", out.Text, want)
	}

	counts := mustGet(t, ioc, "TST:SYS0:1:PULSEIDCNTHST5")
	if got := pv.Waveform(counts.Text, 2); len(got) != 4 || got[0] != "3" {
		t.Errorf("count history = %v", got)
	}

	if v, _ := ioc.Value("EDEF:SYS0:5:CTRL"); v != "0" {
		t.Errorf("CTRL after run = %q, want 0", v)
	}
}

func TestIOCHistoryOverrideAndFaults(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	ioc.SetHistory(2, []int64{5, 4})
	ioc.FailGet("TST:SYS0:1:PULSEIDCNTHST2", "read failed")
	ioc.FailPut("EDEF:SYS0:2:AVGCNT", "write failed")

	if out := mustPut(t, ioc, "EDEF:SYS0:2:AVGCNT", "1"); !out.Failed() {
		t.Error("expected injected put failure")
	}
	mustPut(t, ioc, "EDEF:SYS0:2:CTRL", "1")

	if out := mustGet(t, ioc, "TST:SYS0:0:PULSEIDHST2"); out.Text != "TST:SYS0:0:PULSEIDHST2 2 5 4\n" {
		t.Errorf("history = %q", out.Text)
	}
	if out := mustGet(t, ioc, "TST:SYS0:1:PULSEIDCNTHST2"); out.ErrText != "read failed" {
		t.Errorf("count history error = %q", out.ErrText)
	}
}

func TestIOCRecordsTraffic(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	mustPut(t, ioc, "EDEF:SYS0:1:INCLUSION1", "0")
	mustGet(t, ioc, "EDEF:SYS0:1:NAME")

	puts := ioc.Puts()
	if len(puts) != 1 || puts[0] != (mock.Put{Name: "EDEF:SYS0:1:INCLUSION1", Value: "0"}) {
		t.Errorf("Puts = %+v", puts)
	}
	if gets := ioc.Gets(); len(gets) != 1 || gets[0] != "EDEF:SYS0:1:NAME" {
		t.Errorf("Gets = %v", gets)
	}
}

func TestIOCHonoursCancelledContext(t *testing.T) {
	ioc := mock.NewIOC("TST:SYS0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ioc.Get(ctx, "EDEF:SYS0:1:NAME"); err == nil {
		t.Error("expected context error")
	}
}

func mustGet(t *testing.T, ioc *mock.IOC, name string) pv.Output {
	t.Helper()
	out, err := ioc.Get(context.Background(), name)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", name, err)
	}
	return out
}

func mustPut(t *testing.T, ioc *mock.IOC, name, value string) pv.Output {
	t.Helper()
	out, err := ioc.Put(context.Background(), name, value)
	if err != nil {
		t.Fatalf("Put(%s) failed: %v", name, err)
	}
	return out
}

func TestIOCCustomNamespace(t *testing.T) {
	ioc := mock.NewIOCAt("TST:SYS0", "EDEF:SYS1")
	ioc.Reserve(3, "X")
	ctx := context.Background()

	out, _ := ioc.Get(ctx, "EDEF:SYS1:3:NAME")
	if out.Text != "EDEF:SYS1:3:NAME X\n" {
		t.Errorf("Get = %q", out.Text)
	}
	out, _ = ioc.Get(ctx, "EDEF:SYS0:3:NAME")
	if !out.Failed() {
		t.Error("default namespace should not exist")
	}
}
