package session

import "sync"

// Listeners is a registry of auth state callbacks, safe for concurrent use.
type Listeners struct {
	lock   sync.RWMutex
	nextID int
	fns    map[int]func(*Identity)
}

// Add registers fn and returns a function that removes it again.
func (l *Listeners) Add(fn func(*Identity)) (unsubscribe func()) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(*Identity))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.lock.Lock()
			delete(l.fns, id)
			l.lock.Unlock()
		})
	}
}

// Notify calls every registered listener with id. Listeners run outside the
// lock so they may unsubscribe themselves.
func (l *Listeners) Notify(id *Identity) {
	l.lock.RLock()
	fns := make([]func(*Identity), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.lock.RUnlock()

	for _, fn := range fns {
		fn(id)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return len(l.fns)
}
