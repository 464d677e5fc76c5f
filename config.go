package qamp

import "time"

type Config struct {
	SchedulingTimeout time.Duration
	MemoryLimitBytes  int64
}

func NewConfig() *Config {
	return &Config{
		SchedulingTimeout: 10 * time.Second,
		MemoryLimitBytes:  1 << 30,
	}
}
