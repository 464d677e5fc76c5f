package qamp

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	testTimeout    = 5 * time.Second
	cleanupTimeout = 100 * time.Millisecond
)

func TestComparisonEngine(t *testing.T) {
	Convey("Given a new comparison engine", t, func(c C) {
		ctx, cancel := context.WithCancel(context.Background())
		q := NewQ(ctx, 2, 5, nil)

		Reset(func() {
			cancel()
			time.Sleep(cleanupTimeout)
		})

		Convey("When scheduling a simple comparison", func(c C) {
			result := q.Schedule("test-job", 5, 3, WithSeed(7))

			value := <-result
			c.So(value.Error, ShouldBeNil)
			c.So(value.Comparison.GreaterOrEqual, ShouldBeTrue)
			c.So(value.Comparison.Confirmed, ShouldBeTrue)
		})

		Convey("When scheduling with an empty ID", func(c C) {
			result := q.Schedule("", 3, 5)

			value := <-result
			c.So(value.Error, ShouldBeNil)
			c.So(value.Comparison.GreaterOrEqual, ShouldBeFalse)
		})

		Convey("When using the Compare convenience", func(c C) {
			result := q.Compare(0, 0, WithDeterministic())

			value := <-result
			c.So(value.Error, ShouldBeNil)
			c.So(value.Comparison.GreaterOrEqual, ShouldBeTrue)
			c.So(value.Comparison.Marked, ShouldEqual, 0)
		})

		Convey("When the fault latch is tripped", func(c C) {
			q.Latch().Trip(ErrNormalizationDrift)

			result := q.Schedule("rejected-job", 5, 3)
			value := <-result
			c.So(errors.Is(value.Error, ErrEngineFaulted), ShouldBeTrue)

			q.metrics.mu.RLock()
			rejected := q.metrics.RejectedJobs
			q.metrics.mu.RUnlock()
			c.So(rejected, ShouldEqual, 1)

			Convey("And a manual reset reopens the engine", func(c C) {
				q.Latch().Reset()

				result := q.Schedule("post-reset-job", 5, 3)
				value := <-result
				c.So(value.Error, ShouldBeNil)
				c.So(value.Comparison.GreaterOrEqual, ShouldBeTrue)
			})
		})

		Convey("When using broadcast groups", func(c C) {
			group := q.CreateBroadcastGroup("verdict-group", time.Minute)
			sub1 := q.Subscribe("verdict-group")
			sub2 := q.Subscribe("verdict-group")

			result := q.Schedule("broadcast-job", 9, 4, WithDeterministic())
			value := <-result
			c.So(value.Error, ShouldBeNil)
			group.Send(value)

			for i, ch := range []chan Result{sub1, sub2} {
				select {
				case <-time.After(testTimeout):
					t.Fatalf("Test timed out waiting for subscriber %d", i+1)
				case msg := <-ch:
					c.So(msg.Comparison.Index, ShouldEqual, 5)
					c.So(msg.Comparison.Confirmed, ShouldBeTrue)
				}
			}

			// Clean up
			close(sub1)
			close(sub2)
		})

		Convey("When exporting metrics after runs", func(c C) {
			first := q.Schedule("metrics-job-1", 5, 3)
			second := q.Schedule("metrics-job-2", 3, 5)
			<-first
			<-second

			snapshot := q.Metrics().ExportMetrics()
			c.So(snapshot["completed_runs"], ShouldEqual, 2)
			c.So(snapshot["worker_count"], ShouldEqual, 2)
			c.So(snapshot["success_rate"], ShouldEqual, 1.0)
		})
	})
}
