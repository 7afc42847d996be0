package ui

import (
	"context"
	"sync"

	"github.com/oshokin/aevum/internal/domain/alarm"
	"github.com/oshokin/aevum/internal/logger"
)

// AlarmStore is the remote alarm database the UI mutates.
type AlarmStore interface {
	Add(ctx context.Context, alarm alarm.Alarm) error
	Remove(ctx context.Context, id string) error
}

// Mutator dispatches alarm store mutations without blocking the caller.
// Outcomes are only logged; the UI learns about changes from the subscription.
type Mutator struct {
	ctx   context.Context //nolint:containedctx // Carries the logger into detached tasks.
	store AlarmStore
	wg    sync.WaitGroup
}

// NewMutator creates a Mutator. Tasks outlive ctx cancellation.
func NewMutator(ctx context.Context, store AlarmStore) *Mutator {
	return &Mutator{
		ctx:   context.WithoutCancel(ctx),
		store: store,
	}
}

// Add stores a new alarm in the background.
func (m *Mutator) Add(a alarm.Alarm) {
	m.wg.Go(func() {
		if err := m.store.Add(m.ctx, a); err != nil {
			logger.ErrorKV(m.ctx, "Failed to create alarm", "id", a.ID, "error", err)
		}
	})
}

// Remove deletes an alarm in the background.
func (m *Mutator) Remove(id string) {
	m.wg.Go(func() {
		if err := m.store.Remove(m.ctx, id); err != nil {
			logger.ErrorKV(m.ctx, "Failed to remove alarm", "id", id, "error", err)
		}
	})
}

// Wait blocks until every dispatched mutation has finished.
func (m *Mutator) Wait() {
	m.wg.Wait()
}
