package runner

// Running reports whether a run's context is still held by r.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancelFunc != nil
}
