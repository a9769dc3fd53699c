package task

import "sync"

// Tracker owns one Task per key, for example one image load per feed item.
// Tracking a new task under a key cancels the previous one. After Close
// every tracked task is cancelled and new ones are cancelled on arrival.
type Tracker struct {
	mu     sync.Mutex
	tasks  map[string]Task
	closed bool
}

// NewTracker returns an empty, open Tracker.
func NewTracker() *Tracker {
	return &Tracker{tasks: make(map[string]Task)}
}

// Track registers t under key.
func (tr *Tracker) Track(key string, t Task) {
	tr.mu.Lock()
	if tr.closed {
		tr.mu.Unlock()
		t.Cancel()
		return
	}
	prev := tr.tasks[key]
	tr.tasks[key] = t
	tr.mu.Unlock()
	if prev != nil && prev != t {
		prev.Cancel()
	}
}

// Cancel cancels and forgets the task under key, if any.
func (tr *Tracker) Cancel(key string) {
	tr.mu.Lock()
	t := tr.tasks[key]
	delete(tr.tasks, key)
	tr.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// Release forgets the task under key without cancelling it, but only if it is
// still t. Completions call it to clean up after themselves.
func (tr *Tracker) Release(key string, t Task) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.tasks[key] == t {
		delete(tr.tasks, key)
	}
}

// CancelAll cancels every tracked task but keeps the tracker usable.
func (tr *Tracker) CancelAll() {
	tr.mu.Lock()
	tasks := tr.tasks
	tr.tasks = make(map[string]Task)
	tr.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
}

// Len returns the number of tracked tasks.
func (tr *Tracker) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.tasks)
}

// Close cancels all tasks. Further Track calls cancel their task immediately.
func (tr *Tracker) Close() {
	tr.mu.Lock()
	tr.closed = true
	tr.mu.Unlock()
	tr.CancelAll()
}
