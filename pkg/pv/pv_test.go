package pv

import (
	"reflect"
	"testing"
)

func TestName(t *testing.T) {
	if got := Name("EDEF:SYS0", 7, "INCLUSION3"); got != "EDEF:SYS0:7:INCLUSION3" {
		t.Errorf("Name = %q", got)
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		text, name, want string
	}{
		{"EDEF:SYS0:3:NAME    BSACORE_TEST\n", "EDEF:SYS0:3:NAME", "BSACORE_TEST"},
		{"EDEF:SYS0:3:NAME\n", "EDEF:SYS0:3:NAME", ""},
		{"  plain value ", "OTHER", "plain value"},
		{"EDEF:SYS0:3:NAMEX foo", "EDEF:SYS0:3:NAME", "EDEF:SYS0:3:NAMEX foo"},
	}
	for _, tt := range tests {
		if got := Value(tt.text, tt.name); got != tt.want {
			t.Errorf("Value(%q, %q) = %q, want %q", tt.text, tt.name, got, tt.want)
		}
	}
}

func TestWaveform(t *testing.T) {
	tests := []struct {
		name string
		text string
		skip int
		want []string
	}{
		{"typical", "TST:0:PULSEIDHST4 3 100 103 106\n", 2, []string{"100", "103", "106"}},
		{"repeated spaces", "TST:0:PULSEIDHST4  3  100   103 106", 2, []string{"100", "103", "106"}},
		{"header only", "TST:0:PULSEIDHST4 0", 2, nil},
		{"empty", "", 2, nil},
		{"no skip", "1 2", 0, []string{"1", "2"}},
		{"negative skip", "1 2", -1, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Waveform(tt.text, tt.skip); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Waveform = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestOutputFailed(t *testing.T) {
	if (Output{}).Failed() {
		t.Error("empty error text should not count as failure")
	}
	if !(Output{ErrText: " \n"}).Failed() {
		t.Error("whitespace-only error text should count as failure")
	}
	if !(Output{ErrText: "Channel connect timed out"}).Failed() {
		t.Error("error text should count as failure")
	}
}
