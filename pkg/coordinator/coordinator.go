// Package coordinator provides named barriers shared by a dynamic set of
// participants.
//
// Each participant reports milestones with AddEntityState and waits with
// SyncState. A milestone's barrier opens once registration is closed and every
// known participant has reported it. Participants that join after a barrier
// opened re-arm it, so nobody moves past a milestone that a newcomer has not
// reached yet.
package coordinator

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrCanceled is returned by waits released through Cancel(nil).
var ErrCanceled = errors.New("coordinator canceled")

type entity[E comparable] struct {
	key     E
	states  []string
	checked map[string]bool
}

func (e *entity[E]) has(m string) bool { return slices.Contains(e.states, m) }

type barrier struct {
	open bool
	ch   chan struct{}
}

// Coordinator tracks milestones for participants of type E.
// The zero value is not usable; call New.
type Coordinator[E comparable] struct {
	mu        sync.Mutex
	entities  []*entity[E]
	byKey     map[E]*entity[E]
	final     bool
	barriers  map[string]*barrier
	canceled  chan struct{}
	cancelErr error
}

// New creates an empty coordinator with registration open.
func New[E comparable]() *Coordinator[E] {
	return &Coordinator[E]{
		byKey:    make(map[E]*entity[E]),
		barriers: make(map[string]*barrier),
		canceled: make(chan struct{}),
	}
}

// AddEntity registers a participant. Adding a known participant is a no-op.
func (c *Coordinator[E]) AddEntity(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(e)
}

func (c *Coordinator[E]) addLocked(e E) *entity[E] {
	if ent, ok := c.byKey[e]; ok {
		return ent
	}
	ent := &entity[E]{key: e, checked: make(map[string]bool)}
	c.entities = append(c.entities, ent)
	c.byKey[e] = ent
	c.resetSyncStates()
	return ent
}

// resetSyncStates re-arms every open barrier that not all participants reached.
func (c *Coordinator[E]) resetSyncStates() {
	for m, b := range c.barriers {
		if b.open && !c.allReached(m) {
			c.barriers[m] = &barrier{ch: make(chan struct{})}
		}
	}
}

// FinalEntity closes registration. Barriers may open from now on.
func (c *Coordinator[E]) FinalEntity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.final = true
	for m := range c.barriers {
		c.evaluate(m)
	}
}

// HasAllEntities reports whether registration was closed.
func (c *Coordinator[E]) HasAllEntities() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.final
}

// AddEntityState records that e reached milestone m. Unknown participants are
// registered first.
func (c *Coordinator[E]) AddEntityState(e E, m string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent := c.addLocked(e)
	if !ent.has(m) {
		ent.states = append(ent.states, m)
	}
	c.barrierLocked(m)
	c.evaluate(m)
}

// SyncState blocks until the barrier for m opens, then marks m as checked
// for e.
func (c *Coordinator[E]) SyncState(ctx context.Context, m string, e E) error {
	if err := c.WaitFor(ctx, m); err != nil {
		return err
	}
	c.mu.Lock()
	if ent, ok := c.byKey[e]; ok {
		ent.checked[m] = true
	}
	c.mu.Unlock()
	return nil
}

// WaitFor blocks until the barrier for m opens.
func (c *Coordinator[E]) WaitFor(ctx context.Context, m string) error {
	c.mu.Lock()
	b := c.barrierLocked(m)
	c.evaluate(m)
	if b.open {
		c.mu.Unlock()
		return nil
	}
	ch := b.ch
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-c.canceled:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reached reports whether the barrier for m is currently open.
func (c *Coordinator[E]) Reached(m string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.barriers[m]
	return ok && b.open
}

// States returns the milestones e reported, in order.
func (c *Coordinator[E]) States(e E) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.byKey[e]; ok {
		return slices.Clone(ent.states)
	}
	return nil
}

// Checked reports whether e passed the barrier for m.
func (c *Coordinator[E]) Checked(e E, m string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.byKey[e]
	return ok && ent.checked[m]
}

// Entities returns the participants in registration order.
func (c *Coordinator[E]) Entities() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, len(c.entities))
	for i, ent := range c.entities {
		out[i] = ent.key
	}
	return out
}

// Cancel releases every current and future wait with err, or ErrCanceled when
// err is nil. Only the first call has an effect.
func (c *Coordinator[E]) Cancel(err error) {
	if err == nil {
		err = ErrCanceled
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelErr != nil {
		return
	}
	c.cancelErr = err
	close(c.canceled)
}

// Err returns the cancel cause, if any.
func (c *Coordinator[E]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelErr
}

func (c *Coordinator[E]) barrierLocked(m string) *barrier {
	b, ok := c.barriers[m]
	if !ok {
		b = &barrier{ch: make(chan struct{})}
		c.barriers[m] = b
	}
	return b
}

func (c *Coordinator[E]) allReached(m string) bool {
	for _, ent := range c.entities {
		if !ent.has(m) {
			return false
		}
	}
	return true
}

func (c *Coordinator[E]) evaluate(m string) {
	b := c.barriers[m]
	if b == nil || b.open || !c.final || !c.allReached(m) {
		return
	}
	b.open = true
	close(b.ch)
}
