package transaction

import (
	"sync"

	"github.com/frahmantamala/smartexpense/internal/core/month"
)

type lockKey struct {
	accountID int64
	month     month.Month
}

type refLock struct {
	sync.Mutex
	refs int
}

// admissionLocks serialises check-then-insert per account and month within
// this process. An entry lives only while someone holds or waits for it.
type admissionLocks struct {
	mu    sync.Mutex
	locks map[lockKey]*refLock
}

func newAdmissionLocks() *admissionLocks {
	return &admissionLocks{locks: make(map[lockKey]*refLock)}
}

// lock returns the unlock func. A nil receiver is a no-op.
func (a *admissionLocks) lock(accountID int64, m month.Month) func() {
	if a == nil {
		return func() {}
	}
	key := lockKey{accountID: accountID, month: m}

	a.mu.Lock()
	l, ok := a.locks[key]
	if !ok {
		l = &refLock{}
		a.locks[key] = l
	}
	l.refs++
	a.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, key)
		}
		a.mu.Unlock()
	}
}

