package pipe

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Run executes queued commands one at a time, in arrival order, until the
// queue is closed and drained. It then returns nil.
//
// A command's error is logged and dropped; a panic is recovered and reported
// through Options.OnPanic. Neither stops the loop. A command that never
// returns stalls the session.
func Run(c *Connection) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	c.log.Info("actor started")
	for cmd := range c.q.ch {
		c.metrics.QueueDepth(c.id, len(c.q.ch))
		c.execute(cmd)
	}
	c.log.Info("command queue closed, actor stopped")

	return nil
}

func (c *Connection) execute(cmd Command) {
	name := commandName(cmd)
	log := c.log.With(slog.String("command", name))

	log.Debug("starting to work on command")
	timer := c.metrics.CommandDuration(name)
	err := c.safeDo(name, cmd)
	timer.ObserveDuration()

	c.metrics.CommandProcessed(name, err == nil)
	if err != nil {
		log.Warn("command failed", slog.Any("error", err))
		return
	}
	log.Debug("command done")
}

// safeDo is the only place a command's failure is contained.
func (c *Connection) safeDo(name string, cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.CommandPanic(name)
			c.onPanic(r, debug.Stack(), cmd)
			err = fmt.Errorf("%w: %v", ErrCommandPanicked, r)
		}
	}()
	return cmd.Do(c.ctx, c)
}
