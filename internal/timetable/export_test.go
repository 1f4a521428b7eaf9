package timetable

// SessionCount reports how many draft sessions the dispatcher is tracking.
func (d *Dispatcher) SessionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
