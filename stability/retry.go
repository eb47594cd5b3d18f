package stability

import (
	"helix/internal/diag"
	"helix/oligo"

	"github.com/pkg/errors"
)

// ErrExhausted is returned when a block fails the stability gate on every
// attempt up to Params.MaxRetries.
var ErrExhausted = errors.New("stability: exhausted salt-retry budget")

// ErrAttemptRejected is a sentinel a Build may return (wrapped) to reject
// its own attempt before Check ever runs — e.g. oligo.Assemble finding a
// payload/reverse-primer boundary homopolymer. Run treats it exactly like
// a failed Check and moves on to the next attempt, rather than aborting.
var ErrAttemptRejected = errors.New("stability: attempt rejected before gate evaluation")

// Build produces the full candidate shard set for one salt-retry attempt
// (attempt is 0-based). A block's caller supplies a Build that rotates
// block_salt and the AEAD nonce, re-derives the session key, re-encrypts,
// and re-runs Reed-Solomon split and trellis assembly — everything that
// must change for the candidates to come out differently on retry. T is
// whatever richer type the caller assembles shards into (pipeline pairs
// each oligo.Oligo with its shard index and byte length); toOligo recovers
// the plain oligo.Oligo each candidate wraps, for gate evaluation.
type Build[T any] func(attempt int) ([]T, error)

// Run drives the salt-and-retry loop for one block: it calls build for
// successive attempts until every shard in the returned set passes Check,
// or MaxRetries is exhausted. Every attempt's per-shard outcome is recorded
// into history so a failed run can be diagnosed after the fact. It returns
// the accepted candidate set and the number of attempts beyond the first
// that were needed (0 if the first attempt passed).
func Run[T any](blockID uint64, params Params, history *diag.History, build Build[T], toOligo func(T) oligo.Oligo) (result []T, retries int, err error) {
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultParams.MaxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		candidates, err := build(attempt)
		if errors.Is(err, ErrAttemptRejected) {
			history.Record(blockID, attempt, -1, diag.Reason(ReasonBoundaryHomopolymer))
			continue
		}
		if err != nil {
			return nil, attempt, errors.Wrapf(err, "stability: build attempt %d", attempt)
		}

		allOK := true
		for i, c := range candidates {
			reason := Check(toOligo(c), params)
			history.Record(blockID, attempt, i, diag.Reason(reason))
			if reason != ReasonNone {
				allOK = false
			}
		}
		if allOK {
			return candidates, attempt, nil
		}
	}
	return nil, maxRetries, errors.Wrapf(ErrExhausted, "block %d", blockID)
}
