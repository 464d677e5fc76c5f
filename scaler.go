package qamp

import (
	"log"
	"math"
	"sync"
	"time"
)

// ScalerConfig holds the scaling thresholds.
type ScalerConfig struct {
	TargetLoad         float64       // Target jobs per worker
	ScaleUpThreshold   float64       // Load threshold for scaling up
	ScaleDownThreshold float64       // Load threshold for scaling down
	Cooldown           time.Duration // Time between scaling operations
}

/*
Scaler implements the Regulator interface to size the worker pool to the
queue. Load is jobs queued per worker; past the upper threshold workers
are added toward the target load, below the lower threshold they are
removed, with a cooldown between scaling operations.
*/
type Scaler struct {
	mu sync.Mutex

	pool               *Q
	minWorkers         int
	maxWorkers         int
	targetLoad         float64
	scaleUpThreshold   float64
	scaleDownThreshold float64
	cooldown           time.Duration
	lastScale          time.Time
	metrics            *Metrics
}

func NewScaler(pool *Q, minWorkers, maxWorkers int, config *ScalerConfig) *Scaler {
	return &Scaler{
		pool:               pool,
		minWorkers:         minWorkers,
		maxWorkers:         maxWorkers,
		targetLoad:         config.TargetLoad,
		scaleUpThreshold:   config.ScaleUpThreshold,
		scaleDownThreshold: config.ScaleDownThreshold,
		cooldown:           config.Cooldown,
		lastScale:          time.Now(),
	}
}

// evaluate assesses the current load and scales the worker pool
func (s *Scaler) evaluate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastScale) < s.cooldown {
		return
	}

	s.pool.metrics.mu.RLock()
	queued := s.pool.metrics.JobQueueSize
	workers := s.pool.metrics.WorkerCount
	s.pool.metrics.mu.RUnlock()

	if workers == 0 {
		workers = 1
	}
	currentLoad := float64(queued) / float64(workers)

	scaled := false
	switch {
	case currentLoad > s.scaleUpThreshold && workers < s.maxWorkers:
		needed := int(math.Ceil(float64(queued) / s.targetLoad))
		toAdd := min(needed-workers, s.maxWorkers-workers)
		if toAdd > 0 {
			s.scaleUp(toAdd)
			scaled = true
		}

	case currentLoad < s.scaleDownThreshold && workers > s.minWorkers:
		needed := max(int(math.Ceil(float64(queued)/s.targetLoad)), s.minWorkers)
		toRemove := min(workers-needed, workers-s.minWorkers)
		if toRemove > 0 {
			s.scaleDown(toRemove)
			scaled = true
		}
	}

	if scaled {
		s.lastScale = time.Now()
		s.pool.metrics.mu.Lock()
		s.pool.metrics.LastScale = s.lastScale
		s.pool.metrics.mu.Unlock()
	}
}

// scaleUp adds workers to the pool
func (s *Scaler) scaleUp(count int) {
	for i := 0; i < count; i++ {
		s.pool.startWorker()
	}
}

// scaleDown removes workers from the pool
func (s *Scaler) scaleDown(count int) {
	s.pool.workerMu.Lock()
	defer s.pool.workerMu.Unlock()

	for i := 0; i < count && len(s.pool.workerList) > 0; i++ {
		// Remove the newest worker and cancel its context
		w := s.pool.workerList[len(s.pool.workerList)-1]
		s.pool.workerList = s.pool.workerList[:len(s.pool.workerList)-1]
		w.cancel()

		s.pool.metrics.mu.Lock()
		s.pool.metrics.WorkerCount--
		remaining := s.pool.metrics.WorkerCount
		s.pool.metrics.mu.Unlock()

		log.Printf("Scaled down worker, total workers: %d", remaining)
	}
}

/*
Observe implements the Regulator interface by recording metrics and
re-evaluating pool size.
*/
func (s *Scaler) Observe(metrics *Metrics) {
	s.mu.Lock()
	s.metrics = metrics
	s.mu.Unlock()

	s.evaluate()
}

/*
Limit implements the Regulator interface. Scaling is limited when the pool
is already at its maximum and the queue still runs hot.
*/
func (s *Scaler) Limit() bool {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	if metrics == nil {
		return false
	}

	metrics.mu.RLock()
	queued := metrics.JobQueueSize
	workers := metrics.WorkerCount
	metrics.mu.RUnlock()

	if workers < s.maxWorkers {
		return false
	}
	if workers == 0 {
		workers = 1
	}
	return float64(queued)/float64(workers) > s.scaleUpThreshold
}

/*
Renormalize implements the Regulator interface by re-evaluating pool size
once the cooldown has passed.
*/
func (s *Scaler) Renormalize() {
	s.evaluate()
}
