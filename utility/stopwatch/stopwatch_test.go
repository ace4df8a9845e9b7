// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package stopwatch

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestStopwatchMeasures(t *testing.T) {
	c := qt.New(t)

	s := New()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	elapsed := s.Stop()

	c.Assert(elapsed >= 5*time.Millisecond, qt.IsTrue)
	c.Assert(s.Elapsed(), qt.Equals, elapsed)

	// a second stop keeps the measurement
	c.Assert(s.Stop(), qt.Equals, elapsed)
}

func TestStopwatchUnits(t *testing.T) {
	c := qt.New(t)

	s := &Stopwatch{elapsed: 90 * time.Minute}
	c.Assert(s.Hours(), qt.Equals, 1.5)
	c.Assert(s.Minutes(), qt.Equals, 90.0)
	c.Assert(s.Seconds(), qt.Equals, 5400.0)
	c.Assert(s.Milliseconds(), qt.Equals, 5400e3)
	c.Assert(s.Microseconds(), qt.Equals, 5400e6)
	c.Assert(s.Nanoseconds(), qt.Equals, 5400e9)
	c.Assert(s.Picoseconds(), qt.Equals, 5400e12)
}

func TestStopwatchString(t *testing.T) {
	c := qt.New(t)

	s := &Stopwatch{elapsed: time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond}
	c.Assert(s.String(), qt.Equals, "[01:02:03:045]")
}
