// Package sched provides the virtual-time task queue that drives every
// deferred effect in the game: action propagation, follow-through movement,
// timed traps, mob think ticks and periodic room maintenance.
//
// A Scheduler is not safe for concurrent use. It is owned by the single
// game event loop, which advances virtual time and runs due tasks.
package sched

import (
	"container/heap"
	"time"
)

// Task is a unit of deferred work.
type Task func()

type entry struct {
	due  time.Duration
	seq  uint64
	task Task
}

type queue []*entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any) { *q = append(*q, x.(*entry)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler orders tasks by virtual due time. Tasks with equal due times
// run in submission order.
type Scheduler struct {
	now time.Duration
	seq uint64
	q   queue
}

// New returns an empty Scheduler at virtual time zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules task to run once delay has elapsed. A negative delay is
// treated as zero.
//
// Postcondition: the task runs on a later call to Advance or RunUntil, never
// synchronously inside After.
func (s *Scheduler) After(delay time.Duration, task Task) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.q, &entry{due: s.now + delay, seq: s.seq, task: task})
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.q)
}

// NextDue reports the due time of the earliest queued task.
func (s *Scheduler) NextDue() (time.Duration, bool) {
	if len(s.q) == 0 {
		return 0, false
	}
	return s.q[0].due, true
}

// Advance moves virtual time forward by d and runs every task that falls
// due, including tasks scheduled by tasks that run during the advance.
// It returns the number of tasks run.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return s.RunUntil(s.now + d)
}

// RunUntil runs every task due at or before t, in due order, and leaves
// virtual time at t. Time never moves backwards.
func (s *Scheduler) RunUntil(t time.Duration) int {
	ran := 0
	for len(s.q) > 0 && s.q[0].due <= t {
		e := heap.Pop(&s.q).(*entry)
		if e.due > s.now {
			s.now = e.due
		}
		e.task()
		ran++
	}
	if t > s.now {
		s.now = t
	}
	return ran
}

// Clear drops every queued task.
func (s *Scheduler) Clear() {
	s.q = nil
}
