package timeline

import "container/heap"

// cursor points at the next unread segment of one recording.
type cursor struct {
	rec      int
	pos      int
	absStart float64
	rank     int
}

// cursorQueue is a min-heap of cursors ordered by (absStart, rank, pos).
type cursorQueue []*cursor

var _ heap.Interface = (*cursorQueue)(nil)

func (q cursorQueue) Len() int { return len(q) }

func (q cursorQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.absStart != b.absStart {
		return a.absStart < b.absStart
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.pos < b.pos
}

func (q cursorQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *cursorQueue) Push(x any) { *q = append(*q, x.(*cursor)) }

func (q *cursorQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return c
}
