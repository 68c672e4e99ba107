package live

import (
	"context"
	"log"
	"time"

	"channel-chat/internal/event"
)

// Router delivers events to the live emitters of their recipients and pushes
// periodic keep-alive frames to every attached emitter.
type Router struct {
	reg      *Registry
	interval time.Duration
	now      func() time.Time
}

// NewRouter returns a Router over reg that sends keep-alives every interval
// once Run is called.
func NewRouter(reg *Registry, interval time.Duration) *Router {
	return &Router{reg: reg, interval: interval, now: time.Now}
}

// Deliver pushes ev to each live emitter of each recipient independently.
// A failed push detaches that emitter and is swallowed; it never aborts
// delivery to the remaining emitters or recipients, and it is never surfaced
// to the event producer: the business action already succeeded, real-time
// delivery is best-effort. Failed pushes are not retried: the client
// reconnects with a fresh emitter.
func (r *Router) Deliver(ev event.Event, recipients []int64) {
	for _, userID := range recipients {
		for _, e := range r.reg.EmittersFor(userID) {
			r.push(userID, e, ev)
		}
	}
}

// Run sends a keep-alive frame to every attached emitter across all users on
// a fixed interval, until ctx is cancelled. Keep-alives flow regardless of
// business event traffic, so idle connections are not reclaimed by
// intermediaries. Send failures are handled exactly like delivery failures.
func (r *Router) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ev := event.KeepAlive(r.now().UTC())
			for _, userID := range r.reg.Users() {
				for _, e := range r.reg.EmittersFor(userID) {
					r.push(userID, e, ev)
				}
			}
		}
	}
}

func (r *Router) push(userID int64, e Emitter, ev event.Event) {
	if err := e.Send(ev); err != nil {
		r.reg.Detach(userID, e)
		e.Close()
		log.Printf("live: detached emitter for user %d: %v", userID, err)
	}
}
