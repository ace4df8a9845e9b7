// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestDrawableSize(t *testing.T) {
	c := qt.New(t)

	hook := test.NewGlobal()
	defer hook.Reset()

	width, height := drawableSize(1920, 1080)
	c.Assert(width, qt.Equals, uint16(1920))
	c.Assert(height, qt.Equals, uint16(1080))
	c.Assert(hook.AllEntries(), qt.HasLen, 0)

	width, height = drawableSize(70000, -1)
	c.Assert(width, qt.Equals, uint16(math.MaxUint16))
	c.Assert(height, qt.Equals, uint16(0))

	entries := hook.AllEntries()
	c.Assert(entries, qt.HasLen, 2)
	c.Assert(entries[0].Level, qt.Equals, log.WarnLevel)
	c.Assert(entries[0].Data["axis"], qt.Equals, "width")
	c.Assert(entries[1].Data["axis"], qt.Equals, "height")
}
