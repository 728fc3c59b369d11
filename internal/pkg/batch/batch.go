// Package batch aggregates per-item outcomes of multi-entity operations
// (cancel revert, bulk import, stale sweep). Operations yield a lazy sequence
// of outcomes; Drain consumes all of it so one failed item never hides the rest.
package batch

import "iter"

const (
	// PageSize bounds reads of potentially large id sets.
	PageSize = 1000
	// ChunkSize bounds IN-list lookups and bulk writes.
	ChunkSize = 200
)

// Outcome is the result of processing one item of a batch.
type Outcome[T any] struct {
	// Index is the position of the item in the caller's input (row number for imports).
	Index int
	// Key identifies the item in messages (unit id, barcode, task id).
	Key   string
	Value T
	Err   error
}

// Succeeded reports whether the item was processed without error.
func (o Outcome[T]) Succeeded() bool {
	return o.Err == nil
}

func Ok[T any](index int, key string, value T) Outcome[T] {
	return Outcome[T]{Index: index, Key: key, Value: value}
}

func Fail[T any](index int, key string, err error) Outcome[T] {
	return Outcome[T]{Index: index, Key: key, Err: err}
}

// Report is the drained aggregate of a batch.
type Report[T any] struct {
	Succeeded []Outcome[T]
	Failed    []Outcome[T]
}

func (r Report[T]) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// AllSucceeded is true for an empty batch as well.
func (r Report[T]) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// Values returns the values of successful outcomes in input order.
func (r Report[T]) Values() []T {
	out := make([]T, 0, len(r.Succeeded))
	for _, o := range r.Succeeded {
		out = append(out, o.Value)
	}
	return out
}

// Drain consumes the whole sequence.
func Drain[T any](seq iter.Seq[Outcome[T]]) Report[T] {
	var report Report[T]
	for o := range seq {
		if o.Succeeded() {
			report.Succeeded = append(report.Succeeded, o)
			continue
		}
		report.Failed = append(report.Failed, o)
	}
	return report
}
