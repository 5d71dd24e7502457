// Package queue carries jobs between pipeline stages.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// BlockSync carries poll jobs from the scheduler to the range resolver.
	BlockSync = "block-sync"
	// TransactionProcessing carries enrichment tasks from the resolver to the worker.
	TransactionProcessing = "transaction-processing"

	JobPollBlocks          = "poll_blocks"
	JobProcessTransactions = "process_transactions"
)

var (
	// ErrFull is returned by Enqueue when a bounded queue has no room.
	ErrFull   = errors.New("queue full")
	ErrClosed = errors.New("queue closed")
)

// Job is one unit of work. Attempts counts previous failed deliveries.
type Job struct {
	Name     string          `json:"name"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Attempts int             `json:"attempts"`
}

// NewJob marshals payload into a job named name. A nil payload is omitted.
func NewJob(name string, payload interface{}) (Job, error) {
	job := Job{Name: name}
	if payload == nil {
		return job, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	job.Payload = raw
	return job, nil
}

// Decode unmarshals the job payload into out.
func (j Job) Decode(out interface{}) error {
	if len(j.Payload) == 0 {
		return fmt.Errorf("job %s: empty payload", j.Name)
	}
	if err := json.Unmarshal(j.Payload, out); err != nil {
		return fmt.Errorf("job %s: decode payload: %w", j.Name, err)
	}
	return nil
}

// Queue is a FIFO of jobs. Dequeue blocks until a job arrives or ctx ends.
type Queue interface {
	Name() string
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (Job, error)
}
