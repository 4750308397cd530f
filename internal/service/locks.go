package service

import "sync"

// AttemptLocks hands out one mutex per attempt ID. Answers, proctoring
// counters and the status transition of an attempt form a single aggregate;
// every writer takes this lock so submission always observes a consistent
// snapshot of both streams. Different attempts never contend.
type AttemptLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewAttemptLocks() *AttemptLocks {
	return &AttemptLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *AttemptLocks) Get(attemptID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[attemptID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[attemptID] = m
	}
	return m
}

// Forget drops the mutex of a terminal attempt. Late writers still get a
// fresh mutex and then fail on the SUBMITTED status check, so correctness
// does not depend on the entry staying around.
func (l *AttemptLocks) Forget(attemptID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, attemptID)
}
