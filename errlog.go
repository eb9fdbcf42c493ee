package formz

import "sync"

// errorLog keeps a bounded history of propagation failures, oldest first.
// A nil errorLog is valid and ignores all operations.
type errorLog struct {
	mu  sync.Mutex
	max int
	buf []error
}

// newErrorLog creates an error log holding up to max errors.
// A max of 0 or less disables the log.
func newErrorLog(max int) *errorLog {
	if max <= 0 {
		return nil
	}
	return &errorLog{max: max}
}

// record appends an error, evicting the oldest entry when full.
func (l *errorLog) record(err error) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buf) == l.max {
		copy(l.buf, l.buf[1:])
		l.buf = l.buf[:l.max-1]
	}
	l.buf = append(l.buf, err)
}

// snapshot returns the recorded errors, oldest first.
func (l *errorLog) snapshot() []error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buf) == 0 {
		return nil
	}
	out := make([]error, len(l.buf))
	copy(out, l.buf)
	return out
}

// reset discards all recorded errors.
func (l *errorLog) reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = l.buf[:0]
}
