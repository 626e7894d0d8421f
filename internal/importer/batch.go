// Package importer applies extracted candidates to a store under the
// last-write-wins rule.
package importer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

// Clock supplies the timestamp for each record. Tests inject a fixed or
// stepping clock; production uses SystemClock.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Result counts what a batch did. Found is the number of candidates the
// sequence yielded; every one of them lands in exactly one other counter.
type Result struct {
	Found      int `json:"found"`
	Inserted   int `json:"inserted"`
	Replaced   int `json:"replaced"`
	Unchanged  int `json:"unchanged"`
	Superseded int `json:"superseded"` // same name appeared later in the batch
	Rejected   int `json:"rejected"`

	Rejections []Rejection `json:"rejections,omitempty"`
}

// Rejection records a candidate that failed validation.
type Rejection struct {
	Line   int    `json:"line,omitempty"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Saved is the number of records written to the store.
func (r *Result) Saved() int {
	return r.Inserted + r.Replaced
}

func (r *Result) record(out storage.Outcome) {
	switch out {
	case storage.OutcomeInserted:
		r.Inserted++
	case storage.OutcomeReplaced:
		r.Replaced++
	default:
		r.Unchanged++
	}
}

// BatchError marks the record at which a batch stopped. Records before Index
// were applied and stay committed.
type BatchError struct {
	Index int
	Name  string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// UpsertBatch applies every candidate in seq, in order, each with its own
// clock() timestamp. When a name occurs more than once only its last
// occurrence is applied; the earlier ones count as Superseded. Candidates
// that fail validation are counted as Rejected and skipped.
//
// The first store error stops the batch. The partial Result is returned
// together with a *BatchError.
func UpsertBatch(ctx context.Context, store storage.MenuStore, seq iter.Seq[types.Candidate], clock Clock) (*Result, error) {
	if clock == nil {
		clock = SystemClock
	}

	var candidates []types.Candidate
	last := make(map[string]int)
	for c := range seq {
		last[c.Name] = len(candidates)
		candidates = append(candidates, c)
	}

	res := &Result{Found: len(candidates)}
	for i, c := range candidates {
		if last[c.Name] != i {
			res.Superseded++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, &BatchError{Index: i, Name: c.Name, Err: err}
		}

		item := c.MenuItem(clock())
		if err := types.ValidateMenuItem(item); err != nil {
			res.reject(c, err)
			continue
		}

		out, err := store.UpsertMenuItem(ctx, item)
		if err != nil {
			var verr *types.ValidationError
			if errors.As(err, &verr) {
				res.reject(c, err)
				continue
			}
			return res, &BatchError{Index: i, Name: c.Name, Err: err}
		}
		res.record(out)
	}
	return res, nil
}

func (r *Result) reject(c types.Candidate, err error) {
	r.Rejected++
	r.Rejections = append(r.Rejections, Rejection{Line: c.Line, Name: c.Name, Reason: err.Error()})
}
