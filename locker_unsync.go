//go:build flowcore_unsync

package flowcore

// newLocker returns a no-op locker. Build with -tags flowcore_unsync when
// the embedding host guarantees single-threaded access to every Command
// it drives, to shave the mutex overhead off the registry's hot path.
func newLocker() locker {
	return noopLocker{}
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}
