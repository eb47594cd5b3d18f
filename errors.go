package helix

import "github.com/pkg/errors"

// Sentinel errors for the top-level error taxonomy (spec.md §7). Each maps
// to one CLI exit code in cmd/helix; pipeline code wraps these with
// errors.Wrap/WithStack to keep a call-site trace while letting callers
// still match with errors.Is.
var (
	// ErrIO covers a read failure at the pipeline's input boundary, and any
	// I/O failure during restore (spec.md §6 does not distinguish restore's
	// input/output failures into separate codes the way compile does).
	ErrIO = errors.New("helix: i/o error")

	// ErrOutputIO covers a write failure at compile's archive-output
	// boundary specifically — spec.md §6 gives compile a distinct exit
	// code (5) for output I/O, separate from input I/O (2).
	ErrOutputIO = errors.New("helix: archive output i/o error")

	// ErrStructural covers a malformed header, undecodable address, or
	// wrong archive magic — any failure that is not attributable to
	// probabilistic channel noise.
	ErrStructural = errors.New("helix: structural error")

	// ErrAuthFailure covers an AEAD tag mismatch for a block: either the
	// wrong passphrase, or a block corrupted beyond what Reed-Solomon
	// reconstruction could repair.
	ErrAuthFailure = errors.New("helix: authentication failure")

	// ErrInsufficientShards covers a block with fewer than DataShards
	// surviving (CRC-passing) shards.
	ErrInsufficientShards = errors.New("helix: insufficient surviving shards")

	// ErrStabilityFailure covers a block whose salt-retry budget was
	// exhausted without producing a gate-passing candidate.
	ErrStabilityFailure = errors.New("helix: stability gate exhausted retry budget")

	// ErrKDF covers a key-derivation failure (pathological Argon2id/HKDF
	// parameters).
	ErrKDF = errors.New("helix: key derivation failed")
)

// Tag wraps cause under sentinel so the result still satisfies
// errors.Is(result, sentinel) for ExitCode's dispatch, while keeping
// cause's own message visible in the rendered error text.
func Tag(sentinel, cause error) error {
	return errors.Wrap(sentinel, cause.Error())
}

// ExitCode maps a pipeline error to the CLI exit code table in spec.md §6.
// It walks the error chain with errors.Is, so a wrapped sentinel still
// resolves correctly. Unrecognized errors map to 1 (generic failure).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrKDF):
		return 3
	case errors.Is(err, ErrStabilityFailure):
		return 4
	case errors.Is(err, ErrAuthFailure):
		return 6
	case errors.Is(err, ErrInsufficientShards):
		return 7
	case errors.Is(err, ErrOutputIO):
		return 5
	case errors.Is(err, ErrIO):
		return 2
	case errors.Is(err, ErrStructural):
		return 2
	default:
		return 1
	}
}
