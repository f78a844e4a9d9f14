package scheduler

import "container/heap"

// operationQueue is a max-heap on priority, FIFO within a priority band.
type operationQueue []*Operation

var _ heap.Interface = (*operationQueue)(nil)

func (q operationQueue) Len() int { return len(q) }

func (q operationQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}

	return q[i].seq < q[j].seq
}

func (q operationQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *operationQueue) Push(x interface{}) {
	op := x.(*Operation)
	op.index = len(*q)
	*q = append(*q, op)
}

func (q *operationQueue) Pop() interface{} {
	old := *q
	n := len(old)
	op := old[n-1]
	old[n-1] = nil
	op.index = -1
	*q = old[:n-1]
	return op
}
