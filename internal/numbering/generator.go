// Package numbering allocates collision-safe human-facing numbers for
// documents and externally-linked tasks. Two layers compose: a
// transactional counter guarantees no two concurrent callers see the
// same sequence value, and a post-allocation existence check defends
// the final composite key, which concatenates namespace fragments the
// counter key knows nothing about. A consumed sequence value is never
// reused; a collision re-increments the counter and tries again.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// MaxAttempts bounds the allocate-and-check cycle. Exhausting it is a
// permanent failure surfaced to the caller, never retried here.
const MaxAttempts = 10

// ErrRetryExhausted means MaxAttempts consecutive composite keys were
// already taken.
var ErrRetryExhausted = errors.New("number generator exhausted retry budget")

// Store is the storage contract the generator needs: a transactional
// counter increment and an existence probe on the final composite key.
type Store interface {
	// NextSequence atomically increments the counter for key and
	// returns the post-increment value.
	NextSequence(ctx context.Context, counterKey string) (int64, error)
	// NumberExists reports whether a record already carries the
	// composite number.
	NumberExists(ctx context.Context, number string) (bool, error)
}

// Composer assembles the human-facing number from a sequence value,
// e.g. "STW-GEN-0013" or "PRJ4200017".
type Composer func(seq int64) string

// Result is one successful allocation.
type Result struct {
	Sequence int64
	Number   string
}

// Allocate runs the allocate-and-check cycle against store for the
// given counter key.
func Allocate(ctx context.Context, store Store, counterKey string, compose Composer) (Result, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		seq, err := store.NextSequence(ctx, counterKey)
		if err != nil {
			return Result{}, fmt.Errorf("increment counter %q: %w", counterKey, err)
		}
		number := compose(seq)

		taken, err := store.NumberExists(ctx, number)
		if err != nil {
			return Result{}, fmt.Errorf("check number %q: %w", number, err)
		}
		if !taken {
			return Result{Sequence: seq, Number: number}, nil
		}
		// A second process can legally consume the same composite
		// namespace; burn the sequence and move on.
		log.Printf("[Counter: %s] WARNING: composite number %s already taken (attempt %d/%d)", counterKey, number, attempt, MaxAttempts)
	}
	return Result{}, fmt.Errorf("counter %q: %w", counterKey, ErrRetryExhausted)
}

// DocumentNumber builds the composer for site document numbers:
// <siteShortName>-<typeCode>-<zero-padded sequence>.
func DocumentNumber(siteShortName, typeCode string) Composer {
	return func(seq int64) string {
		return fmt.Sprintf("%s-%s-%04d", siteShortName, typeCode, seq)
	}
}

// TaskNumber builds the composer for external task numbers:
// <projectCode><activityOrder><zero-padded sequence>.
func TaskNumber(projectCode string, activityOrder int) Composer {
	return func(seq int64) string {
		return fmt.Sprintf("%s%d%04d", projectCode, activityOrder, seq)
	}
}

// CounterKey derives the counter document id for (siteId, documentType).
func CounterKey(siteID, documentType string) string {
	return siteID + "_" + documentType
}
