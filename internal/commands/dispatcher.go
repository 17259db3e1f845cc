package commands

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nocwatch/herald/internal/logger"
	"github.com/nocwatch/herald/internal/sequencer"
)

// Package commands parses inbound chat lines for the trigger prefix,
// resolves the command table, and routes replies through a flood-controlled
// sequencer. Lines without the trigger, unknown commands, and malformed
// command lines are all ignored silently.

// Sender delivers one line to a chat target.
type Sender interface {
	Send(target, line string)
}

// Dispatcher owns the command table and the reply routing rules.
type Dispatcher struct {
	trigger    string
	nick       string
	replyDelay time.Duration
	sender     Sender
	log        logger.Logger

	mu    sync.RWMutex
	table map[string]Command
	order []string
}

// NewDispatcher builds an empty dispatcher. nick is the session's own nick,
// used to recognize direct messages.
func NewDispatcher(trigger, nick string, replyDelay time.Duration, sender Sender, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Dispatcher{
		trigger:    trigger,
		nick:       nick,
		replyDelay: replyDelay,
		sender:     sender,
		log:        log,
		table:      make(map[string]Command),
	}
}

// Register adds a command to the table. Later registrations with the same
// name replace earlier ones.
func (d *Dispatcher) Register(cmd Command) {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" || cmd.Run == nil {
		return
	}

	d.mu.Lock()
	if _, exists := d.table[name]; !exists {
		d.order = append(d.order, name)
	}
	d.table[name] = cmd
	d.mu.Unlock()
}

// Names returns the registered command names in registration order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Handle processes one inbound line. Replies run through a fresh sequencer
// per invocation, so concurrent commands interleave at the line level only.
func (d *Dispatcher) Handle(ctx context.Context, sender, target, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] != d.trigger {
		return
	}
	if len(fields) < 2 {
		return
	}

	d.mu.RLock()
	cmd, ok := d.table[strings.ToLower(fields[1])]
	d.mu.RUnlock()
	if !ok {
		d.log.DebugObj("ignoring unknown command", "command_line", map[string]any{
			"sender": sender,
			"text":   text,
		})
		return
	}

	direct := strings.EqualFold(target, d.nick)
	inv := Invocation{
		Command: cmd.Name,
		Args:    fields[2:],
		Sender:  sender,
		Target:  target,
		Direct:  direct,
	}

	lines := cmd.Run(inv)
	if len(lines) == 0 {
		d.log.InfoObj("command produced no reply", "command_result", map[string]any{
			"command": cmd.Name,
			"sender":  sender,
		})
		return
	}

	replyTarget := target
	if direct || cmd.DirectOnly {
		replyTarget = sender
	} else {
		// Channel replies address the sender on the first line.
		lines = append([]string(nil), lines...)
		lines[0] = sender + ": " + lines[0]
	}

	actions := make([]sequencer.Action, 0, len(lines))
	for _, line := range lines {
		line := line
		actions = append(actions, func(context.Context) error {
			d.sender.Send(replyTarget, line)
			return nil
		})
	}

	seq := sequencer.New(d.replyDelay, d.log)
	if err := seq.Run(ctx, actions); err != nil {
		d.log.WarnObj("command reply interrupted", "command_result", map[string]any{
			"command": cmd.Name,
			"error":   err.Error(),
		})
	}
}
