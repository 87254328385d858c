package coop

import (
	"container/heap"
	"time"
)

// wakeup is a suspended task waiting in the timer queue
type wakeup struct {
	at    time.Time
	seq   uint64 // suspension order, breaks ties between equal wake times
	task  *Task
	index int
}

// timerQueue implements heap.Interface ordered by (at, seq)
type timerQueue []*wakeup

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	w := x.(*wakeup)
	w.index = len(*q)
	*q = append(*q, w)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	*q = old[:n-1]
	return w
}

func (q timerQueue) peek() *wakeup {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// popExpired removes every wakeup due at or before now, in queue order
func (q *timerQueue) popExpired(now time.Time) []*Task {
	var due []*Task
	for q.Len() > 0 {
		w := q.peek()
		if w.at.After(now) {
			break
		}
		heap.Pop(q)
		due = append(due, w.task)
	}
	return due
}

// drain removes every wakeup in queue order
func (q *timerQueue) drain() []*Task {
	due := make([]*Task, 0, q.Len())
	for q.Len() > 0 {
		due = append(due, heap.Pop(q).(*wakeup).task)
	}
	return due
}
