// Package bsa drives a BsaCore event definition (EDEF) through one
// measurement run and checks the pulse-id history it produces.
//
// A Session is bound to one EDEF slot. It is created by locating the slot
// that carries a reservation name, then configured with masks and
// measurement parameters, triggered, and verified:
//
//	s, err := bsa.New(ctx, bsa.Config{Client: c, TestPV: "TST:SYS0", EDEFName: "BSACORE_TEST"})
//	_ = s.SetupMasking(ctx, incl, excl)
//	_ = s.SetupMeasurement(ctx, 2800, 1)
//	out, err := s.Run(ctx, 30*time.Second)
//	v := s.Verify(ctx, pv.Waveform(out.Text, 2), 3)
package bsa

import "time"

// PV layout.
const (
	DefaultBasePV        = "EDEF:SYS0"
	DefaultReservationPV = "IOC:IN20:EV01:EDEFNAME"

	FieldName        = "NAME"
	FieldInclusion   = "INCLUSION"
	FieldExclusion   = "EXCLUSION"
	FieldMeasCount   = "MEASCNT"
	FieldAvgCount    = "AVGCNT"
	FieldControl     = "CTRL"
	FieldPulseIDHist = "PULSEIDHST"
	FieldCountHist   = "PULSEIDCNTHST"
)

// Limits of the EDEF record.
const (
	MaxSlotCount       = 20
	InclusionMaskCount = 5
	ExclusionMaskCount = 5
)

// DefaultWait is how long Run lets the IOC acquire before reading back.
const DefaultWait = 30 * time.Second

// DefaultInterval is the pulse-id step assumed when a caller gives none.
const DefaultInterval = 1

// Result history variants under the test PV.
const (
	variantPulseID = 0
	variantCount   = 1
)
