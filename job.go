package qamp

import "time"

// Job is one comparison to be run: the integer pair plus measurement
// settings. Jobs are independent of each other and never retried; a run is
// deterministic given its inputs and source.
type Job struct {
	ID            string
	A             int64
	B             int64
	Source        RandomSource
	Deterministic bool
	TTL           time.Duration
	StartTime     time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// WithSeed fixes the job's measurement draws to a deterministic sequence.
func WithSeed(seed uint64) JobOption {
	return func(j *Job) {
		j.Source = NewSeededSource(seed)
	}
}

// WithSource supplies an explicit random source for the job's measurement.
func WithSource(src RandomSource) JobOption {
	return func(j *Job) {
		j.Source = src
	}
}

// WithDeterministic switches the job's measurement to the argmax outcome.
func WithDeterministic() JobOption {
	return func(j *Job) {
		j.Deterministic = true
	}
}

// WithTTL configures how long the job's result stays retrievable.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}
