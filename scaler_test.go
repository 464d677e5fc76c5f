package qamp

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScalerInterface(t *testing.T) {
	Convey("Given a scaler implementing Regulator interface", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := &Q{
			ctx:      ctx,
			workers:  make(chan chan Job, 10),
			jobs:     make(chan Job, 100),
			space:    newResultSpace(),
			metrics:  NewMetrics(),
			governor: NewMemoryGovernor(1 << 20),
			latch:    NewFaultLatch(),
		}
		scaler := NewScaler(q, 1, 5, &ScalerConfig{
			TargetLoad:         2.0,
			ScaleUpThreshold:   4.0,
			ScaleDownThreshold: 1.0,
			Cooldown:           0,
		})

		Convey("It should implement Regulator interface", func() {
			var _ Regulator = scaler // Compile-time interface check

			scaler.Observe(q.metrics)
			So(scaler.Limit(), ShouldBeFalse) // Idle pool does not limit
		})
	})
}

func TestScalerEvaluate(t *testing.T) {
	Convey("Given a pool with one worker and a zero cooldown scaler", t, func() {
		ctx, cancel := context.WithCancel(context.Background())

		q := &Q{
			ctx:      ctx,
			workers:  make(chan chan Job, 10),
			jobs:     make(chan Job, 100),
			space:    newResultSpace(),
			metrics:  NewMetrics(),
			governor: NewMemoryGovernor(1 << 20),
			latch:    NewFaultLatch(),
		}
		q.startWorker()

		scaler := NewScaler(q, 1, 5, &ScalerConfig{
			TargetLoad:         2.0,
			ScaleUpThreshold:   4.0,
			ScaleDownThreshold: 1.0,
			Cooldown:           0,
		})

		Reset(func() {
			cancel()
			q.space.Close()
			time.Sleep(cleanupTimeout)
		})

		Convey("When the queue runs hot", func() {
			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = 25
			q.metrics.mu.Unlock()

			scaler.evaluate()

			Convey("Then workers are added up to the maximum", func() {
				q.metrics.mu.RLock()
				count := q.metrics.WorkerCount
				q.metrics.mu.RUnlock()

				So(count, ShouldEqual, 5)

				q.workerMu.Lock()
				So(len(q.workerList), ShouldEqual, 5)
				q.workerMu.Unlock()
			})

			Convey("And the scaler limits once pinned at the maximum", func() {
				scaler.Observe(q.metrics)
				So(scaler.Limit(), ShouldBeTrue)
			})

			Convey("And a drained queue scales back down to the minimum", func() {
				q.metrics.mu.Lock()
				q.metrics.JobQueueSize = 0
				q.metrics.mu.Unlock()

				scaler.evaluate()

				q.metrics.mu.RLock()
				count := q.metrics.WorkerCount
				q.metrics.mu.RUnlock()

				So(count, ShouldEqual, 1)

				q.workerMu.Lock()
				So(len(q.workerList), ShouldEqual, 1)
				q.workerMu.Unlock()
			})
		})

		Convey("When the cooldown has not passed", func() {
			cold := NewScaler(q, 1, 5, &ScalerConfig{
				TargetLoad:         2.0,
				ScaleUpThreshold:   4.0,
				ScaleDownThreshold: 1.0,
				Cooldown:           time.Hour,
			})

			q.metrics.mu.Lock()
			q.metrics.JobQueueSize = 20
			q.metrics.mu.Unlock()

			cold.evaluate()

			Convey("Then the pool keeps its size", func() {
				q.metrics.mu.RLock()
				count := q.metrics.WorkerCount
				q.metrics.mu.RUnlock()

				So(count, ShouldEqual, 1)
			})
		})
	})
}

func TestScalerUnderLoad(t *testing.T) {
	Convey("Given a pool with scaling enabled", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		q := NewQ(ctx, 2, 10, &Config{
			SchedulingTimeout: 5 * time.Second,
			MemoryLimitBytes:  1 << 30,
		})

		Convey("When load increases", func() {
			// Wide pairs keep each run busy long enough to back up the queue
			for i := 0; i < 40; i++ {
				q.Schedule(fmt.Sprintf("load-test-%d", i), 1<<15, 0, WithTTL(time.Minute))
			}

			Convey("Worker count should increase", func() {
				count := 0
				deadline := time.Now().Add(15 * time.Second)
				for time.Now().Before(deadline) {
					q.metrics.mu.RLock()
					count = q.metrics.WorkerCount
					q.metrics.mu.RUnlock()
					if count > 2 {
						break
					}
					time.Sleep(100 * time.Millisecond)
				}

				So(count, ShouldBeGreaterThan, 2)
			})
		})
	})
}
