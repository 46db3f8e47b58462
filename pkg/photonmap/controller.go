package photonmap

import (
	"context"
	"errors"
	"sync"
)

// ErrAborted is returned by a pipeline stopped through its Controller
var ErrAborted = errors.New("photonmap: aborted")

// Controller lets another goroutine pause, resume or abort a running
// pipeline. Workers only observe it at their checkpoints, so a photon
// already being traced always completes.
type Controller struct {
	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	aborted bool
}

// NewController creates a controller in the running state
func NewController() *Controller {
	c := &Controller{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Pause makes workers block at their next checkpoint
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume releases paused workers
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Abort makes every current and future checkpoint fail with ErrAborted
func (c *Controller) Abort() {
	c.mu.Lock()
	c.aborted = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Paused reports whether the controller is paused
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Aborted reports whether Abort has been called
func (c *Controller) Aborted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aborted
}

// Checkpoint blocks while paused and reports an abort
func (c *Controller) Checkpoint() error {
	return c.Wait(context.Background())
}

// Wait is Checkpoint that also gives up when ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused && !c.aborted && ctx.Err() == nil {
		// wake the waiter when ctx ends; the callback takes mu, so it
		// cannot broadcast before cond.Wait has released it
		stop := context.AfterFunc(ctx, func() {
			c.mu.Lock()
			c.cond.Broadcast()
			c.mu.Unlock()
		})
		defer stop()

		for c.paused && !c.aborted && ctx.Err() == nil {
			c.cond.Wait()
		}
	}

	if c.aborted {
		return ErrAborted
	}
	return ctx.Err()
}
