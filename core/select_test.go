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
)

const gib = uint64(1) << 30

var (
	graphicsOnly = device.QueueFamily{Flags: device.QueueGraphics, QueueCount: 1}
	computeOnly  = device.QueueFamily{Flags: device.QueueCompute, QueueCount: 2}
	everything   = device.QueueFamily{Flags: device.QueueGraphics | device.QueueCompute | device.QueueTransfer, QueueCount: 16}
)

func discrete(id device.PhysicalDevice, memory uint64) core.Candidate {
	return core.Candidate{
		Device:   id,
		Type:     device.TypeDiscreteGPU,
		Families: []device.QueueFamily{everything},
		Memory:   memory,
	}
}

func integrated(id device.PhysicalDevice, memory uint64) core.Candidate {
	return core.Candidate{
		Device:   id,
		Type:     device.TypeIntegratedGPU,
		Families: []device.QueueFamily{everything},
		Memory:   memory,
	}
}

func TestFindQueueFamily(t *testing.T) {
	families := []device.QueueFamily{computeOnly, graphicsOnly, everything}

	tests := []struct {
		name    string
		req     core.Requirements
		present []bool
		index   uint32
		found   bool
	}{
		{"graphics", core.Requirements{Graphics: true}, nil, 1, true},
		{"compute", core.Requirements{Compute: true}, nil, 0, true},
		{"graphics and compute", core.Requirements{Graphics: true, Compute: true}, nil, 2, true},
		{"nothing required", core.Requirements{}, nil, 0, true},
		{"present deferred", core.Requirements{Graphics: true, Present: true}, nil, 1, true},
		{"present known", core.Requirements{Graphics: true, Present: true}, []bool{true, false, true}, 2, true},
		{"present nowhere", core.Requirements{Present: true}, []bool{false, false, false}, 0, false},
		{"present short list", core.Requirements{Graphics: true, Present: true}, []bool{true}, 0, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			index, found := core.FindQueueFamily(families, test.req, test.present)
			c.Assert(found, qt.Equals, test.found)
			if test.found {
				c.Assert(index, qt.Equals, test.index)
			}
		})
	}
}

func TestRankOutranks(t *testing.T) {
	c := qt.New(t)

	small := core.Rank{Discrete: true, Memory: 1 * gib}
	big := core.Rank{Discrete: false, Memory: 4 * gib}
	c.Assert(small.Outranks(big), qt.IsTrue)
	c.Assert(big.Outranks(small), qt.IsFalse)

	c.Assert(core.Rank{Memory: 2 * gib}.Outranks(core.Rank{Memory: 1 * gib}), qt.IsTrue)
	c.Assert(core.Rank{Memory: 1 * gib}.Outranks(core.Rank{Memory: 1 * gib}), qt.IsFalse)
}

func TestSelectDevicePrefersDiscrete(t *testing.T) {
	c := qt.New(t)

	selection, err := core.SelectDevice([]core.Candidate{
		integrated(1, 8*gib),
		discrete(2, 2*gib),
	}, core.Requirements{Graphics: true})
	c.Assert(err, qt.IsNil)
	c.Assert(selection.Device, qt.Equals, device.PhysicalDevice(2))
	c.Assert(selection.Rank, qt.Equals, core.Rank{Discrete: true, Memory: 2 * gib})
	c.Assert(selection.QueueCount, qt.Equals, uint32(16))
}

func TestSelectDeviceMemoryWithinClass(t *testing.T) {
	c := qt.New(t)

	selection, err := core.SelectDevice([]core.Candidate{
		discrete(1, 2*gib),
		integrated(2, 16*gib),
		discrete(3, 6*gib),
		discrete(4, 4*gib),
	}, core.Requirements{Graphics: true})
	c.Assert(err, qt.IsNil)
	c.Assert(selection.Device, qt.Equals, device.PhysicalDevice(3))
}

func TestSelectDeviceTieKeepsFirst(t *testing.T) {
	c := qt.New(t)

	selection, err := core.SelectDevice([]core.Candidate{
		integrated(1, 2*gib),
		integrated(2, 2*gib),
	}, core.Requirements{Graphics: true})
	c.Assert(err, qt.IsNil)
	c.Assert(selection.Device, qt.Equals, device.PhysicalDevice(1))
}

func TestSelectDeviceDeterministic(t *testing.T) {
	c := qt.New(t)

	candidates := []core.Candidate{
		integrated(1, 4*gib),
		discrete(2, 2*gib),
		discrete(3, 2*gib),
		integrated(4, 8*gib),
	}
	first, err := core.SelectDevice(candidates, core.Requirements{Graphics: true})
	c.Assert(err, qt.IsNil)
	for i := 0; i < 10; i++ {
		again, err := core.SelectDevice(candidates, core.Requirements{Graphics: true})
		c.Assert(err, qt.IsNil)
		c.Assert(again, qt.DeepEquals, first)
	}
	c.Assert(first.Device, qt.Equals, device.PhysicalDevice(2))
}

func TestSelectDeviceSkipsUnsuitable(t *testing.T) {
	c := qt.New(t)

	noFamilies := discrete(1, 64*gib)
	noFamilies.Families = nil

	computeDevice := discrete(2, 32*gib)
	computeDevice.Families = []device.QueueFamily{computeOnly}

	noPresent := discrete(3, 16*gib)
	noPresent.Present = []bool{false}

	selection, err := core.SelectDevice([]core.Candidate{
		noFamilies,
		computeDevice,
		noPresent,
		integrated(4, 1*gib),
	}, core.Requirements{Graphics: true, Present: true})
	c.Assert(err, qt.IsNil)
	c.Assert(selection.Device, qt.Equals, device.PhysicalDevice(4))
	c.Assert(selection.Family, qt.Equals, uint32(0))
}

func TestSelectDeviceNoneSuitable(t *testing.T) {
	c := qt.New(t)

	computeDevice := discrete(1, 2*gib)
	computeDevice.Families = []device.QueueFamily{computeOnly}

	_, err := core.SelectDevice([]core.Candidate{computeDevice}, core.Requirements{Graphics: true})
	c.Assert(err, qt.ErrorIs, core.ErrNoSuitableDevice)

	_, err = core.SelectDevice(nil, core.Requirements{Graphics: true})
	c.Assert(err, qt.ErrorIs, core.ErrNoSuitableDevice)
}
