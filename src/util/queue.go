// queue.go provides a linked list type queue that holds arbitrary data.
// The front element is the first entry into the queue and the first to be removed, while the back is the last
// entry to be added. The queue does not store <nil> values.

package util

// QueueElement holds data in the Queue linked list.
type QueueElement struct {
	E    interface{}   // Data held by queue entry.
	next *QueueElement // Pointer to the entry added after this QueueElement.
}

// Queue is a linked list FIFO queue.
type Queue struct {
	size  int           // Number of entries in the queue.
	front *QueueElement // The oldest element in the queue.
	back  *QueueElement // The last element to be added to the queue.
}

// Push adds a new element to the back of the queue.
func (q *Queue) Push(e interface{}) {
	if e == nil {
		return
	}
	qe := &QueueElement{
		E:    e,
		next: nil,
	}
	if q.size == 0 {
		q.front = qe
		q.back = qe
	} else {
		q.back.next = qe
		q.back = qe
	}
	q.size++
}

// Pop removes and returns the oldest element of the queue.
// If the queue is empty <nil> is returned.
func (q *Queue) Pop() interface{} {
	if q.size == 0 {
		return nil
	}
	e := q.front
	q.front = e.next
	if q.front == nil {
		q.back = nil
	}
	q.size--
	return e.E
}

// Peek works just like Pop, but it does not remove the element from the queue.
func (q *Queue) Peek() interface{} {
	if q.size == 0 {
		return nil
	}
	return q.front.E
}

// Size returns the number of elements in the queue.
func (q *Queue) Size() int {
	return q.size
}
