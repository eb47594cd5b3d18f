package stability

import (
	"testing"

	"helix/internal/diag"
	"helix/oligo"

	"github.com/pkg/errors"
)

func goodOligo(t *testing.T) oligo.Oligo {
	t.Helper()
	fwd := mustSeq(t, "ACGTACGTACGTACGTACGT")
	rev := mustSeq(t, "TGCATGCATGCATGCATGCA")
	return oligo.Oligo{FwdPrimer: fwd, RevPrimer: rev, Payload: mustSeq(t, "AGCTAGCTAGCTAGCTAGCTAGCTAGCTAG")}
}

func badOligo(t *testing.T) oligo.Oligo {
	t.Helper()
	o := goodOligo(t)
	o.Payload = mustSeq(t, "GCGCGCGCGCGCGCGCGCGCGCGCGCGCGC")
	return o
}

func identity(o oligo.Oligo) oligo.Oligo { return o }

func TestRunSucceedsOnFirstAttempt(t *testing.T) {
	o := goodOligo(t)
	build := func(attempt int) ([]oligo.Oligo, error) {
		return []oligo.Oligo{o}, nil
	}
	result, retries, err := Run(1, DefaultParams, &diag.History{}, build, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if retries != 0 {
		t.Fatalf("expected 0 retries, got %d", retries)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result))
	}
}

func TestRunRetriesUntilGatePasses(t *testing.T) {
	history := &diag.History{}
	build := func(attempt int) ([]oligo.Oligo, error) {
		if attempt < 2 {
			return []oligo.Oligo{badOligo(t)}, nil
		}
		return []oligo.Oligo{goodOligo(t)}, nil
	}
	result, retries, err := Run(2, DefaultParams, history, build, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if retries != 2 {
		t.Fatalf("expected to succeed on attempt 2, got retries=%d", retries)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result))
	}
	if len(history.Recent()) != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", len(history.Recent()))
	}
}

func TestRunExhaustsRetryBudget(t *testing.T) {
	params := DefaultParams
	params.MaxRetries = 3
	build := func(attempt int) ([]oligo.Oligo, error) {
		return []oligo.Oligo{badOligo(t)}, nil
	}
	_, retries, err := Run(3, params, &diag.History{}, build, identity)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if retries != params.MaxRetries {
		t.Fatalf("expected retries == MaxRetries (%d), got %d", params.MaxRetries, retries)
	}
}

func TestRunTreatsAttemptRejectedAsRetry(t *testing.T) {
	history := &diag.History{}
	attempts := 0
	build := func(attempt int) ([]oligo.Oligo, error) {
		attempts++
		if attempt == 0 {
			return nil, errors.Wrap(ErrAttemptRejected, "boundary homopolymer")
		}
		return []oligo.Oligo{goodOligo(t)}, nil
	}
	_, retries, err := Run(4, DefaultParams, history, build, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if retries != 1 {
		t.Fatalf("expected to succeed on attempt 1 after one rejection, got %d", retries)
	}
	if attempts != 2 {
		t.Fatalf("expected build called twice, got %d", attempts)
	}
}
