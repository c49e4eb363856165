package signals

import "sync"

// entryLocks serializa las actualizaciones de una misma entrada. Entradas
// distintas no comparten mutex. Los mutex se liberan cuando nadie los usa.
type entryLocks struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newEntryLocks() *entryLocks {
	return &entryLocks{locks: make(map[string]*entryLock)}
}

// lock bloquea la entrada y devuelve la función para liberarla
func (l *entryLocks) lock(key string) func() {
	l.mu.Lock()
	el, ok := l.locks[key]
	if !ok {
		el = &entryLock{}
		l.locks[key] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()

	return func() {
		el.mu.Unlock()

		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// size número de entradas con mutex activo
func (l *entryLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
