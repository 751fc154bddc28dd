// Package task drives the lifecycle of one diarization request: file
// selection, submission, remote-status polling, and terminal outcome.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dan-lund/diamond/internal/api"
	"github.com/dan-lund/diamond/internal/types"
)

// ErrNoFile is returned by Submit when no file has been selected.
var ErrNoFile = errors.New("no file selected")

// Backend is the slice of the remote API the controller needs.
type Backend interface {
	Submit(ctx context.Context, path string) (string, error)
	Status(ctx context.Context, taskID string) (*api.StatusResponse, error)
}

// Snapshot is an immutable view of the controller state, handed to the
// observer on every transition.
type Snapshot struct {
	State   string
	File    string
	TaskID  string
	Results []types.Segment
}

// Controller is the state machine for one diarization request. Each
// instance owns its own poll timer and task identifier; nothing is shared
// across instances.
type Controller struct {
	backend  Backend
	interval time.Duration
	log      zerolog.Logger
	onChange func(Snapshot)

	mu      sync.Mutex
	state   string
	file    string
	taskID  string
	results []types.Segment
	stop    chan struct{} // non-nil iff a poll loop is running
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers a callback invoked after every state transition.
// The callback runs outside the controller lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// New creates a controller in the idle state with no file attached.
func New(backend Backend, interval time.Duration, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		interval: interval,
		log:      log,
		state:    types.StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select attaches a file while idle. Selecting in any other state is
// ignored; the lifecycle only picks up a new file after Reset.
func (c *Controller) Select(path string) {
	c.mu.Lock()
	if c.state != types.StateIdle {
		c.mu.Unlock()
		c.log.Debug().Str("state", c.state).Msg("select ignored outside idle")
		return
	}
	c.file = path
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Submit uploads the selected file and moves the controller into
// processing. Without a selected file it is a no-op: no state change and
// no network call. A submission failure logs, returns the controller to
// idle with the file retained, and surfaces no task identifier.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != types.StateIdle || c.file == "" {
		c.mu.Unlock()
		return ErrNoFile
	}
	file := c.file
	c.state = types.StateProcessing
	c.results = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	taskID, err := c.backend.Submit(ctx, file)

	c.mu.Lock()
	if c.state != types.StateProcessing || c.file != file {
		// Reset raced the upload; whatever came back belongs to a
		// lifecycle that no longer exists.
		c.mu.Unlock()
		c.log.Debug().Msg("submission outcome discarded after reset")
		return nil
	}

	if err != nil {
		c.state = types.StateIdle
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.log.Error().Err(err).Str("file", file).Msg("submission failed")
		c.notify(snap)
		return err
	}

	c.taskID = taskID
	stop := make(chan struct{})
	c.stop = stop
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.log.Info().Str("task_id", taskID).Msg("submission accepted, polling started")
	go c.pollLoop(taskID, stop)
	c.notify(snap)
	return nil
}

// Reset returns the controller to idle, discarding the file, task
// identifier, and results, and tearing down any running poll loop.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.stopLocked()
	c.state = types.StateIdle
	c.file = ""
	c.taskID = ""
	c.results = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Close tears down the poll loop without touching the lifecycle state.
// Call it whenever the controller's owner goes away.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// pollLoop queries remote status on a fixed interval until a terminal
// status arrives or the loop is torn down. Transient query errors are
// logged and retried on the next tick.
func (c *Controller) pollLoop(taskID string, stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			resp, err := c.backend.Status(context.Background(), taskID)
			if err != nil {
				c.log.Warn().Err(err).Str("task_id", taskID).Msg("poll failed, retrying on next tick")
				continue
			}
			if c.apply(taskID, resp) {
				return
			}
		}
	}
}

// apply folds one status response into the controller. It reports whether
// the poll loop should stop. Responses for a task identifier that is no
// longer current are discarded.
func (c *Controller) apply(taskID string, resp *api.StatusResponse) bool {
	c.mu.Lock()
	if c.taskID != taskID || c.state != types.StateProcessing {
		c.mu.Unlock()
		c.log.Debug().Str("task_id", taskID).Msg("stale poll response discarded")
		return true
	}

	switch resp.Status {
	case types.RemoteCompleted:
		c.results = resp.Result
		c.state = types.StateCompleted
		c.stop = nil
	case types.RemoteFailed:
		c.state = types.StateFailed
		c.stop = nil
	default:
		c.mu.Unlock()
		return false
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Info().Str("task_id", taskID).Str("state", snap.State).
		Int("segments", len(snap.Results)).Msg("task reached terminal state")
	c.notify(snap)
	return true
}

func (c *Controller) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:   c.state,
		File:    c.file,
		TaskID:  c.taskID,
		Results: c.results,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
