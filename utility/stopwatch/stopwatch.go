// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stopwatch measures intervals with the high resolution clock.
package stopwatch

import (
	"fmt"
	"time"

	"github.com/loov/hrtime"
)

// Stopwatch measures the time between Start and Stop.
type Stopwatch struct {
	start   time.Duration
	elapsed time.Duration
	running bool
}

// New returns a stopped stopwatch.
func New() *Stopwatch {
	return &Stopwatch{}
}

// Start starts measuring.
func (s *Stopwatch) Start() {
	s.start = hrtime.Now()
	s.running = true
}

// Stop stops measuring and keeps the elapsed time.
func (s *Stopwatch) Stop() time.Duration {
	if s.running {
		s.elapsed = hrtime.Since(s.start)
		s.running = false
	}
	return s.elapsed
}

// Elapsed is the time measured by the last Stop.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.elapsed
}

// Hours elapsed between start and stop.
func (s *Stopwatch) Hours() float64 { return s.elapsed.Hours() }

// Minutes elapsed between start and stop.
func (s *Stopwatch) Minutes() float64 { return s.elapsed.Minutes() }

// Seconds elapsed between start and stop.
func (s *Stopwatch) Seconds() float64 { return s.elapsed.Seconds() }

// Milliseconds elapsed between start and stop.
func (s *Stopwatch) Milliseconds() float64 { return s.Seconds() * 1e3 }

// Microseconds elapsed between start and stop.
func (s *Stopwatch) Microseconds() float64 { return s.Seconds() * 1e6 }

// Nanoseconds elapsed between start and stop.
func (s *Stopwatch) Nanoseconds() float64 { return float64(s.elapsed.Nanoseconds()) }

// Picoseconds elapsed between start and stop.
func (s *Stopwatch) Picoseconds() float64 { return s.Nanoseconds() * 1e3 }

// String formats the elapsed time as [hh:mm:ss:mmm].
func (s *Stopwatch) String() string {
	d := s.elapsed
	h := int64(d/time.Hour) % 100
	m := int64(d/time.Minute) % 60
	sec := int64(d/time.Second) % 60
	ms := int64(d/time.Millisecond) % 1000
	return fmt.Sprintf("[%02d:%02d:%02d:%03d]", h, m, sec, ms)
}
