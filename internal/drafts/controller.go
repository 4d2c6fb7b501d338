package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
)

// State is the controller's observable position in the auto-save cycle.
type State string

const (
	// StateClean means no unsaved changes since the last write.
	StateClean State = "clean"
	// StateDirtyPending means a change occurred and the debounce timer
	// is running.
	StateDirtyPending State = "dirty-pending"
	// StateSaving means a draft write is in flight.
	StateSaving State = "saving"
	// StateDraftAvailable means a draft exists in storage that has not
	// been explicitly cleared.
	StateDraftAvailable State = "draft-available"
)

// Controller drives auto-saving for one editing session. Change
// detection compares serialized snapshots, so re-submitting an
// identical payload never schedules a write; the first snapshot after
// mount seeds the baseline and is not treated as user-authored.
type Controller struct {
	service   *Service
	debouncer *Debouncer

	owner        string
	clientID     string
	durationDays int

	mu           sync.Mutex
	state        State
	lastSnapshot []byte
	primed       bool
	restored     bool
}

func NewController(service *Service, cfg *config.Config, owner, clientID string, durationDays int) *Controller {
	return &Controller{
		service:      service,
		debouncer:    NewDebouncer(time.Duration(cfg.DraftDebounceMs) * time.Millisecond),
		owner:        owner,
		clientID:     clientID,
		durationDays: durationDays,
		state:        StateClean,
	}
}

// State reports where the session stands in the auto-save cycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func snapshot(payload Payload) []byte {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return b
}

// Restore recalls a stored draft for this session. It runs at most
// once per controller; later calls return nil without touching
// storage. A restorable draft seeds the change-tracking baseline and
// moves the session to draft-available.
func (c *Controller) Restore(ctx context.Context) (*DraftResponse, error) {
	c.mu.Lock()
	if c.restored {
		c.mu.Unlock()
		return nil, nil
	}
	c.restored = true
	c.mu.Unlock()

	resp, err := c.service.Get(ctx, c.owner, c.clientID, c.durationDays)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, ErrExpired) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !resp.Restorable {
		return nil, nil
	}

	c.mu.Lock()
	c.lastSnapshot = snapshot(resp.Payload)
	c.primed = true
	c.state = StateDraftAvailable
	c.mu.Unlock()
	return resp, nil
}

// OnChange reports the session's current snapshot. The first call
// seeds the baseline; every later call whose serialized form differs
// from the baseline schedules a debounced draft write.
func (c *Controller) OnChange(payload Payload) {
	snap := snapshot(payload)

	c.mu.Lock()
	if !c.primed {
		c.primed = true
		c.lastSnapshot = snap
		c.mu.Unlock()
		return
	}
	if string(snap) == string(c.lastSnapshot) {
		c.mu.Unlock()
		return
	}
	c.lastSnapshot = snap
	c.state = StateDirtyPending
	c.mu.Unlock()

	c.debouncer.Trigger(func() {
		c.save(payload)
	})
}

func (c *Controller) save(payload Payload) {
	c.mu.Lock()
	c.state = StateSaving
	c.mu.Unlock()

	req := &SaveRequest{
		ClientID:     c.clientID,
		DurationDays: c.durationDays,
		Payload:      payload,
	}
	_, err := c.service.Save(context.Background(), c.owner, req)

	c.mu.Lock()
	if err != nil {
		// The write failed for this cycle; the change stays pending so
		// the next edit retriggers it.
		c.state = StateDirtyPending
	} else {
		c.state = StateDraftAvailable
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("drafts: auto-save failed for %s: %v", Key(c.clientID, c.durationDays), err)
	}
}

// Flush writes any pending snapshot immediately.
func (c *Controller) Flush() {
	c.debouncer.Flush()
}

// Complete ends the session after a real save: the pending write is
// dropped, the stored draft discarded, and change tracking reset so
// the persisted state is not re-flagged as dirty. A session that never
// left clean leaves storage untouched.
func (c *Controller) Complete(ctx context.Context) error {
	c.debouncer.Cancel()

	c.mu.Lock()
	touched := c.state != StateClean
	c.state = StateClean
	c.lastSnapshot = nil
	c.primed = false
	c.mu.Unlock()

	if !touched {
		return nil
	}
	return c.service.Discard(ctx, c.owner, c.clientID, c.durationDays)
}

// Clear abandons the session's draft without a save, resetting change
// tracking to the caller's initial state.
func (c *Controller) Clear(ctx context.Context) error {
	c.debouncer.Cancel()

	c.mu.Lock()
	c.state = StateClean
	c.lastSnapshot = nil
	c.primed = false
	c.mu.Unlock()

	err := c.service.Discard(ctx, c.owner, c.clientID, c.durationDays)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
