package queue

import "sync"

// Task is one scheduled request against a specific target.
// Iteration is the 1-based position in seed order.
type Task struct {
	Iteration int
	Target    string
}

// TaskQueue is a pre-seeded work-distribution queue. All tasks are pushed
// up front by the coordinator; workers drain it with non-blocking pops.
type TaskQueue struct {
	mu     sync.Mutex
	tasks  []Task
	head   int
	popped int
}

func New() *TaskQueue {
	return &TaskQueue{}
}

// Push appends a task. It is intended for the single-threaded seeding phase
// but is safe under concurrent use.
func (q *TaskQueue) Push(t Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
}

// TryPop removes and returns the next task. It never blocks; the second
// return value is false once the queue is drained.
func (q *TaskQueue) TryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.tasks) {
		return Task{}, false
	}
	t := q.tasks[q.head]
	q.head++
	q.popped++
	return t, true
}

// Len returns the number of tasks not yet popped.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks) - q.head
}

// Popped returns how many tasks have been handed to workers so far.
func (q *TaskQueue) Popped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popped
}
