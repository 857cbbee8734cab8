// Package persist snapshots a declared subset of a store's state to a
// storage.Storage under the store's name, and restores it at startup.
//
// The stored value is an envelope: {"state": <partial>, "version": <n>}.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"taskpad/internal/state"
	"taskpad/internal/storage"
)

// Envelope is the on-disk shape of a snapshot.
type Envelope[P any] struct {
	State   P   `json:"state"`
	Version int `json:"version"`
}

// Options declares what a store persists and how it is merged back.
type Options[S, P any] struct {
	// Name is the storage key, e.g. "todo-storage".
	Name string

	// Version is written with every snapshot. Snapshots carrying a
	// different version are ignored on restore.
	Version int

	// Partialize selects the persisted fields of a state.
	Partialize func(S) P

	// Merge seeds a default state with restored fields.
	Merge func(persisted P, defaults S) S
}

// Adapter reads and writes one store's snapshot.
type Adapter[S, P any] struct {
	storage storage.Storage
	opts    Options[S, P]
	logger  *log.Logger
}

// New creates an adapter. A nil logger discards log output.
func New[S, P any](st storage.Storage, opts Options[S, P], logger *log.Logger) *Adapter[S, P] {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter[S, P]{storage: st, opts: opts, logger: logger}
}

// Name returns the storage key of the snapshot.
func (a *Adapter[S, P]) Name() string { return a.opts.Name }

// Restore returns defaults seeded with the stored snapshot. Absent,
// unreadable, unparsable or mismatched-version snapshots yield defaults
// unchanged; the reason is logged, never returned.
func (a *Adapter[S, P]) Restore(ctx context.Context, defaults S) S {
	raw, err := a.storage.Get(ctx, a.opts.Name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Printf("restore %s: %v", a.opts.Name, err)
		}
		return defaults
	}

	var env Envelope[P]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		a.logger.Printf("restore %s: ignoring unparsable snapshot: %v", a.opts.Name, err)
		return defaults
	}
	if env.Version != a.opts.Version {
		a.logger.Printf("restore %s: ignoring snapshot version %d (want %d)", a.opts.Name, env.Version, a.opts.Version)
		return defaults
	}
	return a.opts.Merge(env.State, defaults)
}

// Save writes the persisted subset of s.
func (a *Adapter[S, P]) Save(ctx context.Context, s S) error {
	b, err := json.Marshal(Envelope[P]{State: a.opts.Partialize(s), Version: a.opts.Version})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", a.opts.Name, err)
	}
	if err := a.storage.Set(ctx, a.opts.Name, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", a.opts.Name, err)
	}
	return nil
}

// Clear removes the snapshot.
func (a *Adapter[S, P]) Clear(ctx context.Context) error {
	return a.storage.Remove(ctx, a.opts.Name)
}

// Listener returns a state listener that saves every new state.
// Failures are logged; the in-memory state stays authoritative.
func (a *Adapter[S, P]) Listener() state.Listener[S] {
	return func(next, prev S) {
		if err := a.Save(context.Background(), next); err != nil {
			a.logger.Printf("persist: %v", err)
		}
	}
}
