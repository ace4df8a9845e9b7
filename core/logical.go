// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/succotash/device"
)

// createLogicalContext creates the device, its queue, a command pool and a
// primary command buffer. Either all of them exist afterwards or none do.
func (c *Context) createLogicalContext() error {
	var (
		family  = c.selection.Family
		partial teardown
	)

	dev, err := c.drv.CreateDevice(c.selection.Device, device.DeviceInfo{
		Queues: []device.QueueInfo{{
			FamilyIndex: family,
			Priorities:  []float32{1},
		}},
	})
	if err != nil {
		return driverError("create logical device", err)
	}
	partial.push(func() { c.drv.DestroyDevice(dev) })

	queue := c.drv.GetQueue(dev, family, 0)

	pool, err := c.drv.CreateCommandPool(dev, family)
	if err != nil {
		partial.run()
		return driverError("create command pool", err)
	}
	partial.push(func() { c.drv.DestroyCommandPool(dev, pool) })

	cmd, err := c.drv.AllocateCommandBuffer(dev, pool)
	if err != nil {
		partial.run()
		return driverError("allocate command buffer", err)
	}
	partial.push(func() { c.drv.FreeCommandBuffer(dev, pool, cmd) })

	c.device = dev
	c.queue = queue
	c.commandPool = pool
	c.commandBuffer = cmd
	c.logicalScope.adopt(&partial)
	c.logger().WithField("family", family).Debug("logical context created")
	return nil
}
