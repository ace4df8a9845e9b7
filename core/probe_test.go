// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/succotash/core"
	"github.com/devblok/succotash/device"
	"github.com/devblok/succotash/device/devicetest"
)

func TestProbe(t *testing.T) {
	c := qt.New(t)

	drv := devicetest.New()
	drv.Devices = []devicetest.PhysicalDevice{
		devicetest.Integrated("integrated", 8*devicetest.GiB),
		devicetest.Discrete("discrete", 2*devicetest.GiB),
		{
			Properties: device.Properties{Name: "transfer only", Type: device.TypeDiscreteGPU, VendorID: 0x10de},
			Families:   []device.QueueFamily{{Flags: device.QueueTransfer, QueueCount: 2}},
			Heaps:      []device.MemoryHeap{{Size: 12 * devicetest.GiB}, {Size: 4 * devicetest.GiB}},
		},
	}

	reports, err := core.Probe(drv, []string{"VK_KHR_surface"}, core.Requirements{Graphics: true})
	c.Assert(err, qt.IsNil)
	c.Assert(reports, qt.HasLen, 3)
	c.Assert(drv.LastInstance.Extensions, qt.DeepEquals, []string{"VK_KHR_surface"})
	c.Assert(drv.LiveCount(), qt.Equals, 0)

	c.Assert(reports[0].Name, qt.Equals, "integrated")
	c.Assert(reports[0].Type, qt.Equals, "integrated")
	c.Assert(reports[0].Suitable, qt.IsTrue)
	c.Assert(reports[0].Selected, qt.IsFalse)

	c.Assert(reports[1].Selected, qt.IsTrue)
	c.Assert(reports[1].Discrete, qt.IsTrue)
	c.Assert(reports[1].Families, qt.DeepEquals, []core.FamilyReport{
		{Graphics: true, Compute: true, Transfer: true, QueueCount: 16},
	})

	c.Assert(reports[2].Suitable, qt.IsFalse)
	c.Assert(reports[2].Selected, qt.IsFalse)
	c.Assert(reports[2].Memory, qt.Equals, 16*devicetest.GiB)
	c.Assert(reports[2].VendorID, qt.Equals, uint32(0x10de))
}

func TestProbeFailures(t *testing.T) {
	c := qt.New(t)

	drv := devicetest.New()
	drv.Devices = nil
	_, err := core.Probe(drv, nil, core.Requirements{Graphics: true})
	c.Assert(err, qt.ErrorIs, core.ErrNoDevicesFound)
	c.Assert(drv.LiveCount(), qt.Equals, 0)

	drv = devicetest.New()
	drv.FailOn("EnumeratePhysicalDevices", device.ErrorInitializationFailed)
	_, err = core.Probe(drv, nil, core.Requirements{Graphics: true})
	c.Assert(err, qt.ErrorMatches, `failed to enumerate physical devices. Error\(-3\): "VK_ERROR_INITIALIZATION_FAILED"`)
	c.Assert(drv.LiveCount(), qt.Equals, 0)
}
