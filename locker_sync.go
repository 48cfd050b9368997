//go:build !flowcore_unsync

package flowcore

import "sync"

// newLocker returns a real mutex. This is the default build: a Registry
// may be touched by the executor goroutine and by middleware/bridge
// callbacks completing on other goroutines at the same time.
func newLocker() locker {
	return &sync.Mutex{}
}
