package status

import "sync"

// RingSize is the number of codes retained by a Ring.
const RingSize = 10

// Ring remembers the most recently returned codes so that the last
// failure can be described after the fact.
type Ring struct {
	mu    sync.Mutex
	codes [RingSize]Code
	pos   int
}

// Record stores c as the most recent code and returns it.
func (r *Ring) Record(c Code) Code {
	r.mu.Lock()
	r.pos = (r.pos + 1) % RingSize
	r.codes[r.pos] = c
	r.mu.Unlock()
	return c
}

// Last returns the most recently recorded code.
func (r *Ring) Last() Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[r.pos]
}

// Recent returns the recorded codes, newest first.
func (r *Ring) Recent() []Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Code, 0, RingSize)
	for i := 0; i < RingSize; i++ {
		out = append(out, r.codes[(r.pos-i+RingSize)%RingSize])
	}
	return out
}
