package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
)

const defaultEventBuffer = 64

// Transition is one reducer step as seen by observers.
type Transition struct {
	Event    Event
	Prev     State
	Next     State
	Commands []dispatch.Command
	Err      error
}

// Observer is told about every transition, on the loop goroutine.
type Observer func(Transition)

type envelope struct {
	ev    Event
	reply chan error
}

// Loop is a channel-driven event loop around a Reducer. Events are reduced
// one at a time on the goroutine running Run; commands execute on their
// own goroutines and post their results back as CommandCompleted.
type Loop struct {
	reducer   Reducer
	engine    dispatch.Engine
	log       logger.Logger
	events    chan envelope
	done      chan struct{}
	observers []Observer
	state     State
	inflight  sync.WaitGroup
}

// NewLoop creates a loop starting from initial.
func NewLoop(r Reducer, eng dispatch.Engine, initial State, log logger.Logger) *Loop {
	return &Loop{
		reducer: r,
		engine:  eng,
		log:     log,
		events:  make(chan envelope, defaultEventBuffer),
		done:    make(chan struct{}),
		state:   initial,
	}
}

// Observe registers fn. It must be called before Run.
func (l *Loop) Observe(fn Observer) {
	l.observers = append(l.observers, fn)
}

// Post queues ev without waiting for it to be reduced.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	return l.enqueue(ctx, envelope{ev: ev})
}

// Send queues ev and waits until it has been reduced, returning the
// reducer's verdict. A rejected request comes back as its validation error.
func (l *Loop) Send(ctx context.Context, ev Event) error {
	reply := make(chan error, 1)
	if err := l.enqueue(ctx, envelope{ev: ev, reply: reply}); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

func (l *Loop) enqueue(ctx context.Context, env envelope) error {
	select {
	case l.events <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Seed pulls the engine's current snapshot and queues it.
func (l *Loop) Seed(ctx context.Context) error {
	snap, err := l.engine.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("seed snapshot: %w", err)
	}

	return l.Post(ctx, SnapshotReceived{Snapshot: snap})
}

// Run reduces events until ctx is cancelled and returns the final state.
// Commands still running are cancelled with ctx and awaited.
func (l *Loop) Run(ctx context.Context) (State, error) {
	defer func() {
		close(l.done)
		l.inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return l.state, ctx.Err()
		case env := <-l.events:
			l.step(ctx, env)
		}
	}
}

func (l *Loop) step(ctx context.Context, env envelope) {
	prev := l.state

	next, cmds, err := l.reducer.Reduce(prev, env.ev)
	l.state = next

	if env.reply != nil {
		env.reply <- err
	}

	t := Transition{Event: env.ev, Prev: prev, Next: next, Commands: cmds, Err: err}
	for _, fn := range l.observers {
		fn(t)
	}

	for _, cmd := range cmds {
		l.inflight.Add(1)

		go func(cmd dispatch.Command) {
			defer l.inflight.Done()

			res := dispatch.Execute(ctx, l.engine, cmd)
			if err := l.Post(ctx, CommandCompleted{Result: res}); err != nil {
				l.log.Debug().Err(err).Str("command", cmd.String()).Msg("Dropping command result")
			}
		}(cmd)
	}
}
