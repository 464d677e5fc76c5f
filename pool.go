package qamp

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Q is the batch comparison engine: a worker pool that runs one
// amplification per job, with shared admission control through the fault
// latch and the memory governor.
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	quit       chan struct{}
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *ResultSpace
	scaler     *Scaler
	metrics    *Metrics
	governor   *MemoryGovernor
	latch      *FaultLatch
	regulators []Regulator
	workerMu   sync.Mutex
	workerList []*Worker
	config     *Config
}

// NewQ creates a new comparison engine
func NewQ(ctx context.Context, minWorkers, maxWorkers int, config *Config) *Q {
	ctx, cancel := context.WithCancel(ctx)
	if config == nil {
		config = NewConfig()
	}

	q := &Q{
		ctx:        ctx,
		cancel:     cancel,
		quit:       make(chan struct{}),
		jobs:       make(chan Job, maxWorkers*10),
		workers:    make(chan chan Job, maxWorkers),
		space:      newResultSpace(),
		metrics:    NewMetrics(),
		governor:   NewMemoryGovernor(config.MemoryLimitBytes),
		latch:      NewFaultLatch(),
		workerList: make([]*Worker, 0),
		config:     config,
	}

	// Start initial workers
	for i := 0; i < minWorkers; i++ {
		q.startWorker()
	}

	q.scaler = NewScaler(q, minWorkers, maxWorkers, &ScalerConfig{
		TargetLoad:         2.0,
		ScaleUpThreshold:   4.0,
		ScaleDownThreshold: 1.0,
		Cooldown:           time.Millisecond * 500,
	})
	q.regulators = []Regulator{q.scaler, q.governor, q.latch}

	// Start the manager goroutine
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	// Start metrics collection
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.collectMetrics()
	}()

	return q
}

// Pool management
func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			// Wait for a worker with timeout
			select {
			case <-q.ctx.Done():
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					return
				case <-time.After(q.getSchedulingTimeout()):
					log.Printf("Worker refused job %s, storing failure", job.ID)
					q.space.Store(job.ID, nil, fmt.Errorf("dispatch: %w", ErrNoWorkers), job.TTL)
				}
			case <-time.After(q.getSchedulingTimeout()):
				log.Printf("No available workers for job: %s, timeout occurred", job.ID)
				q.space.Store(job.ID, nil, ErrNoWorkers, job.TTL)
			}
		}
	}
}

// collectMetrics refreshes the queue gauges and drives every regulator
// once per tick.
func (q *Q) collectMetrics() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = len(q.jobs)
			q.metrics.ActiveWorkers = len(q.workers)
			q.metrics.mu.Unlock()

			for _, regulator := range q.regulators {
				regulator.Observe(q.metrics)
				regulator.Renormalize()
			}
		}
	}
}

// Public API methods

// Schedule queues one comparison under the given ID and returns the
// channel its result will arrive on. An empty ID gets a generated one.
func (q *Q) Schedule(id string, a, b int64, opts ...JobOption) chan Result {
	if id == "" {
		id = uuid.NewString()
	}

	// A faulted engine rejects work outright
	if q.latch.Limit() {
		q.metrics.mu.Lock()
		q.metrics.RejectedJobs++
		q.metrics.mu.Unlock()

		ch := make(chan Result, 1)
		ch <- Result{
			Error:     fmt.Errorf("%w: %v", ErrEngineFaulted, q.latch.Cause()),
			CreatedAt: time.Now(),
		}
		close(ch)
		return ch
	}

	job := Job{
		ID:        id,
		A:         a,
		B:         b,
		StartTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&job)
	}

	// Try to schedule with the configured timeout
	ctx, cancel := context.WithTimeout(q.ctx, q.getSchedulingTimeout())
	defer cancel()

	select {
	case q.jobs <- job:
		return q.space.Await(job.ID)
	case <-ctx.Done():
		q.metrics.mu.Lock()
		q.metrics.SchedulingFailures++
		q.metrics.mu.Unlock()

		ch := make(chan Result, 1)
		ch <- Result{
			Error:     fmt.Errorf("job scheduling timeout: %w", ctx.Err()),
			CreatedAt: time.Now(),
		}
		close(ch)
		return ch
	}
}

// Compare queues one comparison under a generated ID.
func (q *Q) Compare(a, b int64, opts ...JobOption) chan Result {
	return q.Schedule(uuid.NewString(), a, b, opts...)
}

func (q *Q) CreateBroadcastGroup(id string, ttl time.Duration) *BroadcastGroup {
	return q.space.CreateBroadcastGroup(id, ttl)
}

func (q *Q) Subscribe(groupID string) chan Result {
	return q.space.Subscribe(groupID)
}

// Metrics returns the engine's shared metrics.
func (q *Q) Metrics() *Metrics { return q.metrics }

// Latch returns the engine's fault latch, whose Reset reopens a faulted
// engine.
func (q *Q) Latch() *FaultLatch { return q.latch }

// Governor returns the engine's memory governor.
func (q *Q) Governor() *MemoryGovernor { return q.governor }

// Helper functions
func (q *Q) startWorker() {
	ctx, cancel := context.WithCancel(q.ctx)
	worker := &Worker{
		pool:   q,
		jobs:   make(chan Job),
		ctx:    ctx,
		cancel: cancel,
	}
	q.workerMu.Lock()
	q.workerList = append(q.workerList, worker)
	q.workerMu.Unlock()

	q.metrics.mu.Lock()
	q.metrics.WorkerCount++
	count := q.metrics.WorkerCount
	q.metrics.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
	log.Printf("Started worker, total workers: %d", count)
}

// getSchedulingTimeout returns the configured timeout or a default
func (q *Q) getSchedulingTimeout() time.Duration {
	if q.config != nil && q.config.SchedulingTimeout > 0 {
		return q.config.SchedulingTimeout
	}
	return 5 * time.Second
}

// Example demonstrates usage of the comparison engine
func Example() {
	ctx := context.Background()
	q := NewQ(ctx, 5, 20, nil)

	// Broadcast verdicts to anyone interested
	group := q.CreateBroadcastGroup("verdicts", time.Minute)
	subscriber := q.Subscribe("verdicts")

	go func() {
		for result := range subscriber {
			if result.Error != nil {
				fmt.Printf("Comparison failed: %v\n", result.Error)
				continue
			}
			cmp := result.Comparison
			fmt.Printf("%d >= %d is %v (sampled index %d, probability %.3f)\n",
				cmp.A, cmp.B, cmp.GreaterOrEqual, cmp.Index, cmp.Probability)
		}
	}()

	// Schedule a seeded comparison and broadcast its verdict
	result := q.Schedule("credit-check", 42, 17,
		WithSeed(7),
		WithTTL(time.Minute),
	)
	for value := range result {
		if value.Error != nil {
			fmt.Printf("Error: %v\n", value.Error)
			continue
		}
		group.Send(value)
	}

	// Engine-wide health snapshot
	mean, stddev := q.Metrics().ProbabilitySummary()
	fmt.Printf("Mean sampled probability %.3f (stddev %.3f)\n", mean, stddev)

	close(subscriber)
	q.Close()
}

// Close shuts the engine down and waits for every goroutine to finish.
func (q *Q) Close() {
	if q == nil {
		return
	}

	log.Println("Closing comparison engine")

	if q.cancel != nil {
		q.cancel()
	}

	// Wait for all goroutines to finish before closing channels
	q.wg.Wait()

	q.workerMu.Lock()
	for _, worker := range q.workerList {
		close(worker.jobs)
	}
	q.workerList = nil
	q.workerMu.Unlock()

	close(q.quit)
	close(q.jobs)
	close(q.workers)

	q.space.Close()

	log.Println("Comparison engine closed")
}
