package notifications

import "sync"

// ErrorLog records notification failures for one run.
type ErrorLog struct {
	mu     sync.Mutex
	errors []error
}

// Record appends err; nil is ignored.
func (l *ErrorLog) Record(err error) {
	if l == nil || err == nil {
		return
	}
	l.mu.Lock()
	l.errors = append(l.errors, err)
	l.mu.Unlock()
}

// Len returns the number of recorded failures.
func (l *ErrorLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// First returns up to n of the earliest failures.
func (l *ErrorLog) First(n int) []error {
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.errors) {
		n = len(l.errors)
	}
	return append([]error(nil), l.errors[:n]...)
}
