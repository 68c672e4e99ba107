package live

import "sync"

// Registry maps each user to their live emitters. Multiple emitters per user
// are allowed (multi-device). Each emitter is tagged with the session secret
// it was attached under, so revoking a session can close exactly its
// connections. Snapshot reads are serialized per user bucket, not globally,
// so connection churn for one user never stalls broadcasts to others.
type Registry struct {
	mu      sync.RWMutex
	buckets map[int64]*bucket
}

type bucket struct {
	mu       sync.Mutex
	emitters map[Emitter]string // emitter -> session secret
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[int64]*bucket)}
}

// Attach registers a live emitter under userID, tagged with the session it
// belongs to. Insertion happens with r.mu held so the empty-bucket cleanup in
// Detach cannot delete the bucket between lookup and insert and orphan the
// emitter.
func (r *Registry) Attach(userID int64, session string, e Emitter) {
	r.mu.Lock()
	b := r.buckets[userID]
	if b == nil {
		b = &bucket{emitters: make(map[Emitter]string)}
		r.buckets[userID] = b
	}
	b.mu.Lock()
	b.emitters[e] = session
	b.mu.Unlock()
	r.mu.Unlock()
}

// Detach removes one emitter. No-op if it was already removed; detachment is
// immediate and does not wait for the next keep-alive tick.
func (r *Registry) Detach(userID int64, e Emitter) {
	r.mu.RLock()
	b := r.buckets[userID]
	r.mu.RUnlock()
	if b == nil {
		return
	}

	b.mu.Lock()
	delete(b.emitters, e)
	empty := len(b.emitters) == 0
	b.mu.Unlock()

	if empty {
		r.mu.Lock()
		// Re-check under the write lock; an Attach may have raced in.
		b.mu.Lock()
		if len(b.emitters) == 0 && r.buckets[userID] == b {
			delete(r.buckets, userID)
		}
		b.mu.Unlock()
		r.mu.Unlock()
	}
}

// CloseSession detaches and closes every emitter the user attached under the
// given session. It is called when the session is revoked, so streams opened
// with a logged-out token stop receiving events immediately. Emitters are
// closed after the locks are released.
func (r *Registry) CloseSession(userID int64, session string) {
	r.mu.Lock()
	b := r.buckets[userID]
	if b == nil {
		r.mu.Unlock()
		return
	}

	var closing []Emitter
	b.mu.Lock()
	for e, s := range b.emitters {
		if s == session {
			delete(b.emitters, e)
			closing = append(closing, e)
		}
	}
	if len(b.emitters) == 0 {
		delete(r.buckets, userID)
	}
	b.mu.Unlock()
	r.mu.Unlock()

	for _, e := range closing {
		e.Close()
	}
}

// EmittersFor returns a snapshot of the user's current live emitters.
func (r *Registry) EmittersFor(userID int64) []Emitter {
	r.mu.RLock()
	b := r.buckets[userID]
	r.mu.RUnlock()
	if b == nil {
		return nil
	}

	b.mu.Lock()
	out := make([]Emitter, 0, len(b.emitters))
	for e := range b.emitters {
		out = append(out, e)
	}
	b.mu.Unlock()
	return out
}

// Users returns a snapshot of every user id with at least one live emitter.
func (r *Registry) Users() []int64 {
	r.mu.RLock()
	out := make([]int64, 0, len(r.buckets))
	for id := range r.buckets {
		out = append(out, id)
	}
	r.mu.RUnlock()
	return out
}
