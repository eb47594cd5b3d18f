// Package stability implements the wet-lab plausibility gate: GC-content,
// melting-temperature, and primer-collision checks that a candidate oligo
// must pass before it is accepted into the archive, plus the salt-and-retry
// loop that regenerates a block's encryption and framing on rejection.
package stability

import (
	"helix/oligo"
	"helix/trellis"
)

// Window bounds one stability metric.
type Window struct {
	Min, Max float64
}

// DefaultGCWindow is the archived acceptable GC-content fraction.
var DefaultGCWindow = Window{Min: 0.40, Max: 0.60}

// DefaultTmWindow is the archived acceptable melting-temperature range in
// degrees Celsius.
var DefaultTmWindow = Window{Min: 50.0, Max: 65.0}

// TmFormula identifies the melting-temperature estimator archived in the
// header, so a future implementation can detect and reject an unsupported
// formula rather than silently compute a different Tm.
const TmFormula = "marmur-schildkraut-doty"

// Params configures one archive's stability gate.
type Params struct {
	GCWindow   Window
	TmWindow   Window
	Tau        int // primer-collision fuzzy-match tolerance
	MaxRetries int
}

// DefaultParams matches the archive defaults used when no override is
// given at compile time.
var DefaultParams = Params{
	GCWindow:   DefaultGCWindow,
	TmWindow:   DefaultTmWindow,
	Tau:        oligo.DefaultTau,
	MaxRetries: 16,
}

// GCContent returns the fraction of bases in seq that are G or C.
func GCContent(seq trellis.Sequence) float64 {
	if len(seq) == 0 {
		return 0
	}
	gc := 0
	for _, b := range seq {
		if b == trellis.BaseG || b == trellis.BaseC {
			gc++
		}
	}
	return float64(gc) / float64(len(seq))
}

// MeltingTemp estimates Tm via the Marmur-Schildkraut-Doty formula:
// Tm = 64.9 + 41*(GC-16.4)/len, where GC is the raw G+C base count (not the
// fraction). This is the formula named by TmFormula; it is intentionally a
// length-sensitive approximation, not the nearest-neighbor model, matching
// the precision the specification expects of this layer.
func MeltingTemp(seq trellis.Sequence) float64 {
	if len(seq) == 0 {
		return 0
	}
	gc := 0.0
	for _, b := range seq {
		if b == trellis.BaseG || b == trellis.BaseC {
			gc++
		}
	}
	return 64.9 + 41*(gc-16.4)/float64(len(seq))
}

// Reason reports why Check rejected a candidate; it mirrors diag.Reason so
// callers can feed retry outcomes straight into the diagnostics ring without
// a translation step.
type Reason int

const (
	// ReasonNone marks acceptance.
	ReasonNone Reason = iota
	ReasonGC
	ReasonTm
	ReasonPrimerCollision
	// ReasonBoundaryHomopolymer marks a candidate rejected before it ever
	// reached Check, because assembly itself produced an illegal
	// payload/reverse-primer junction (oligo.ErrBoundaryHomopolymer).
	ReasonBoundaryHomopolymer
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonGC:
		return "gc-out-of-range"
	case ReasonTm:
		return "tm-out-of-range"
	case ReasonPrimerCollision:
		return "primer-collision"
	case ReasonBoundaryHomopolymer:
		return "boundary-homopolymer"
	default:
		return "unknown"
	}
}

// Check evaluates one candidate shard's payload against the GC and Tm
// gates (spec: "For a payload s, Tm(s) = ..."), then scans that same
// payload for primer collisions, in that order, returning the first
// failure reason or ReasonNone if the candidate passes all three.
func Check(o oligo.Oligo, params Params) Reason {
	gc := GCContent(o.Payload)
	if gc < params.GCWindow.Min || gc > params.GCWindow.Max {
		return ReasonGC
	}

	tm := MeltingTemp(o.Payload)
	if tm < params.TmWindow.Min || tm > params.TmWindow.Max {
		return ReasonTm
	}

	if oligo.HasPrimerCollision(o.Payload, o.FwdPrimer, o.RevPrimer, params.Tau) {
		return ReasonPrimerCollision
	}

	return ReasonNone
}
