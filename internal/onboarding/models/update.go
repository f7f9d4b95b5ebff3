package models

import (
	"context"
	"errors"
)

// ErrNoChange is returned by a Mutate func when the locked aggregate already
// holds the requested state. Stores treat it as success and skip the write.
var ErrNoChange = errors.New("no change")

// StepUpdate is one atomic change to an aggregate, executed by the store
// under the per-user lock:
//
//  1. Attempt is re-evaluated against the locked aggregate (skipped for Reset)
//  2. Mutate edits a private copy
//  3. the store persists the column group for Attempt.Step plus progress
//  4. AfterWrite runs inside the same transaction; an error aborts everything
type StepUpdate struct {
	Attempt    Attempt
	Reset      bool
	Mutate     func(u *UserAggregate) error
	AfterWrite func(ctx context.Context, u *UserAggregate) error
}

// Group names the sub-record column group the update writes. Empty means
// progress columns only.
func (s StepUpdate) Group() Step {
	if s.Reset {
		return ""
	}
	return s.Attempt.Step
}

// Prepare runs the evaluation and mutation phases on u in place. Stores call
// it on a clone of the locked aggregate.
func (s StepUpdate) Prepare(u *UserAggregate) error {
	if !s.Reset {
		if err := Evaluate(u, s.Attempt).Err(); err != nil {
			return err
		}
	}
	if s.Mutate == nil {
		return nil
	}
	return s.Mutate(u)
}
