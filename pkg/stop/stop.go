// Package stop coordinates graceful shutdown of brindled's long-running
// components — the RPC listener, the optional metrics listener, and the
// content store — so that a single SIGINT/SIGTERM drains all three
// concurrently instead of leaving whichever one wasn't explicitly stopped
// to die mid-request.
package stop

import "sync"

// Channel carries the outcome of stopping one component: no value and a
// close for a clean drain, or the error(s) encountered along the way. Done
// must be called exactly once.
type Channel chan []error

// Result is the receive-only side of a Channel, handed back to whoever
// asked a component to stop so they can Wait for it to finish.
type Result <-chan []error

// Done reports errs (if any) and closes the Channel, signaling that the
// component has finished stopping.
func (ch Channel) Done(errs ...error) {
	if len(errs) > 0 && errs[0] != nil {
		ch <- errs
	}
	close(ch)
}

// Result converts a Channel to its receive-only Result.
func (ch Channel) Result() Result {
	return Result((chan []error)(ch))
}

// Wait blocks until the component signals Done and returns any errors it
// reported.
func (r Result) Wait() []error {
	return <-r
}

// Component is one piece of brindled that owns a shutdown sequence of its
// own — rpc.Server.Shutdown, an http.Server for /metrics, or a
// store.Store's Close. It must return immediately and do the actual work
// in a goroutine, signaling completion through the returned Result.
type Component func() Result

// Group is the set of components brindled shuts down together on receipt
// of SIGINT/SIGTERM.
type Group struct {
	mu         sync.Mutex
	components []Component
}

// NewGroup allocates an empty Group.
func NewGroup() *Group {
	return &Group{}
}

// Add registers a component to be stopped the next time Stop is called.
func (g *Group) Add(c Component) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.components = append(g.components, c)
}

// Stop asks every registered component to shut down concurrently and
// collects whatever errors they report, so one slow drain (e.g. the RPC
// listener finishing in-flight requests) doesn't delay starting the
// others. brindled calls this exactly once, from its signal handler.
func (g *Group) Stop() Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	whenDone := make(Channel)

	results := make([]Result, 0, len(g.components))
	for _, c := range g.components {
		r := c()
		if r == nil {
			panic("stop: component returned a nil Result")
		}
		results = append(results, r)
	}

	go func() {
		var errs []error
		for _, r := range results {
			errs = append(errs, r.Wait()...)
		}
		whenDone.Done(errs...)
	}()

	return whenDone.Result()
}
