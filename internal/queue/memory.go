package queue

import (
	"context"
	"sync"
)

// DefaultCapacity bounds in-memory queues.
const DefaultCapacity = 1024

// Memory is a bounded in-process queue.
type Memory struct {
	name   string
	jobs   chan Job
	done   chan struct{}
	closer sync.Once
}

var _ Queue = (*Memory)(nil)

func NewMemory(name string, capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{name: name, jobs: make(chan Job, capacity), done: make(chan struct{})}
}

func (m *Memory) Name() string { return m.name }

// Enqueue never blocks; a full queue returns ErrFull.
func (m *Memory) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}
	select {
	case m.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-m.jobs:
		return job, nil
	case <-m.done:
		return Job{}, ErrClosed
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len reports the number of buffered jobs.
func (m *Memory) Len() int { return len(m.jobs) }

// Close stops the queue; buffered jobs are dropped.
func (m *Memory) Close() {
	m.closer.Do(func() { close(m.done) })
}
