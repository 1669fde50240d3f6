package schtree

// Close releases the memory reservation of a private point copy. Searches on
// a closed Tree fail with ErrClosed. Close is idempotent.
func (t *Tree[T]) Close() error {
	if t == nil || !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.rc.ReleaseMemory(t.reserved)
	return nil
}
