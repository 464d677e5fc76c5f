package qamp

import (
	"context"
	"log"
	"time"
)

// Worker runs comparisons
type Worker struct {
	pool   *Q
	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
}

// run registers the worker with the pool and processes jobs until its
// context is cancelled or the pool closes its job channel.
func (w *Worker) run() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case w.pool.workers <- w.jobs:
			select {
			case <-w.ctx.Done():
				return
			case job, ok := <-w.jobs:
				if !ok {
					return
				}
				w.process(job)
			case <-time.After(time.Second):
				continue
			}
		case <-time.After(100 * time.Millisecond):
			continue
		}
	}
}

// process runs a single comparison and stores the result. Runs are never
// retried; a run is deterministic given its inputs and source.
func (w *Worker) process(job Job) {
	qubits := widthFor(job.A, job.B)

	// Hold the memory budget for the duration of the run. Widths beyond
	// MaxQubits skip admission and are rejected inside Compare instead.
	if qubits <= MaxQubits {
		if err := w.pool.governor.Admit(w.ctx, qubits); err != nil {
			log.Printf("Job %s rejected by memory governor: %v", job.ID, err)
			w.pool.metrics.recordRun(job.StartTime, nil, err)
			w.pool.space.Store(job.ID, nil, err, job.TTL)
			return
		}
		defer w.pool.governor.Release(qubits)
	}

	comparator := Comparator{
		Source:        job.Source,
		Deterministic: job.Deterministic,
	}
	cmp, err := comparator.Compare(job.A, job.B)
	if err != nil {
		log.Printf("Job %s failed: %v", job.ID, err)
		if IsFatal(err) {
			w.pool.latch.Trip(err)
		}
	}

	w.pool.metrics.recordRun(job.StartTime, cmp, err)
	w.pool.space.Store(job.ID, cmp, err, job.TTL)
}
