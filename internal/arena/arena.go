// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package arena provides fixed-capacity storage for per-frame records.
//
// The capacities mirror hardware limits, so running out of room is a bug in
// the producer rather than a condition to recover from. Append reports it as
// an error wrapping [ErrCapacityExceeded] and leaves the arena unchanged.
package arena

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned when an append would overflow an arena.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// Arena is a fixed-capacity, append-only array that is reset every frame.
type Arena[T any] struct {
	name  string
	items []T
	n     int
}

// New allocates an arena holding up to capacity records.
func New[T any](name string, capacity int) *Arena[T] {
	return &Arena[T]{name: name, items: make([]T, capacity)}
}

// Name returns the label used in capacity errors.
func (a *Arena[T]) Name() string { return a.name }

// Len returns the number of records appended since the last Reset.
func (a *Arena[T]) Len() int { return a.n }

// Cap returns the fixed capacity.
func (a *Arena[T]) Cap() int { return len(a.items) }

// Reset empties the arena without releasing storage.
func (a *Arena[T]) Reset() { a.n = 0 }

// Append stores v and returns its index.
func (a *Arena[T]) Append(v T) (int, error) {
	i, p, err := a.Alloc()
	if err != nil {
		return 0, err
	}
	*p = v
	return i, nil
}

// Alloc reserves the next slot, zeroes it and returns its index and address.
// The address stays valid until the next Resize.
func (a *Arena[T]) Alloc() (int, *T, error) {
	if a.n >= len(a.items) {
		return 0, nil, fmt.Errorf("%w: %s (limit %d)", ErrCapacityExceeded, a.name, len(a.items))
	}
	i := a.n
	a.n++
	var zero T
	a.items[i] = zero
	return i, &a.items[i], nil
}

// At returns the address of record i. It panics if i is out of range.
func (a *Arena[T]) At(i int) *T {
	if i < 0 || i >= a.n {
		panic(fmt.Sprintf("arena %s: index %d out of range [0,%d)", a.name, i, a.n))
	}
	return &a.items[i]
}

// Items returns the appended records. The slice aliases the arena.
func (a *Arena[T]) Items() []T { return a.items[:a.n] }

// Resize changes the capacity and empties the arena.
func (a *Arena[T]) Resize(capacity int) {
	if capacity != len(a.items) {
		a.items = make([]T, capacity)
	}
	a.n = 0
}
