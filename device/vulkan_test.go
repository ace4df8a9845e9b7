// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNativeTimeout(t *testing.T) {
	c := qt.New(t)

	c.Assert(nativeTimeout(0), qt.Equals, uint(0))
	c.Assert(nativeTimeout(1000), qt.Equals, uint(1000))
	c.Assert(nativeTimeout(math.MaxUint64), qt.Equals, ^uint(0))
	c.Assert(nativeTimeout(math.MaxUint32), qt.Equals, uint(math.MaxUint32))
}
