package comm

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Actor is a named concurrent participant in a simulation run. Target is
// invoked on its own goroutine with one channel per entry in Stacks, all
// sharing the run's medium. A nil Stacks list yields a single plaintext
// channel.
type Actor struct {
	// Name identifies the actor and addresses messages to it.
	Name string

	// Priority is the default queue priority of the actor's channels.
	Priority int

	// Stacks lists the security contexts the actor speaks; one channel is
	// derived per stack.
	Stacks []Layer

	// Target is the actor's body. It returns when the actor is done.
	Target func(channels ...*Channel)
}

// Run creates one medium shared by all actors, derives their channels, runs
// every actor on its own goroutine, and joins them. Cancelling ctx stops the
// run early without treating it as an error; the medium is stopped either
// way.
func Run(ctx context.Context, interval time.Duration, actors ...Actor) error {
	medium := NewMedium(interval)
	if err := medium.Start(); err != nil {
		return err
	}
	defer medium.Stop()

	var wg sync.WaitGroup
	for _, actor := range actors {
		stacks := actor.Stacks
		if len(stacks) == 0 {
			stacks = []Layer{Plaintext{}}
		}
		channels := make([]*Channel, len(stacks))
		for i, stack := range stacks {
			channels[i] = NewChannel(actor.Name, medium, stack, actor.Priority)
		}
		wg.Add(1)
		go func(a Actor, channels []*Channel) {
			defer wg.Done()
			a.Target(channels...)
		}(actor, channels)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		slog.Info("run interrupted")
		return nil
	}
}
