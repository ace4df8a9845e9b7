// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/devblok/succotash/device"
)

// Update renders one frame: it acquires the next swapchain image, clears
// it, presents it and waits for the queue to go idle. Frames never
// overlap. Errors are returned to the caller, who decides whether to keep
// running.
func (c *Context) Update() (err error) {
	if !c.surfaceReady {
		return c.notReady("Update")
	}

	c.frameWatch.Start()
	defer func() {
		c.frameWatch.Stop()
		c.logger().WithField("ms", c.frameWatch.Milliseconds()).Debug("frame")
	}()

	sem, err := c.drv.CreateSemaphore(c.device)
	if err != nil {
		return driverError("create semaphore", err)
	}

	// Once submitted, the batch waits on sem until the queue drains.
	var submitted bool
	defer func() {
		if submitted {
			if idleErr := c.drv.QueueWaitIdle(c.queue); idleErr != nil && err == nil {
				err = driverError("wait for queue idle", idleErr)
			}
		}
		c.drv.DestroySemaphore(c.device, sem)
	}()

	index, err := c.drv.AcquireNextImage(c.device, c.swapchain, math.MaxUint64, sem)
	if err != nil {
		return driverError("acquire next image", err)
	}
	if int(index) >= len(c.framebuffers) {
		return errors.Newf("acquired image %d outside swapchain of %d", index, len(c.framebuffers))
	}
	if err := c.record(index); err != nil {
		return err
	}

	if err := c.drv.QueueSubmit(c.queue, c.commandBuffer, sem); err != nil {
		return driverError("submit command buffer", err)
	}
	submitted = true

	if err := c.drv.QueuePresent(c.queue, c.swapchain, index); err != nil {
		return driverError("present", err)
	}
	return nil
}

// record fills the primary command buffer with a clear of image index.
func (c *Context) record(index uint32) error {
	cmd, image := c.commandBuffer, c.images[index]

	if err := c.drv.BeginCommandBuffer(cmd); err != nil {
		return driverError("begin command buffer", err)
	}

	c.drv.CmdImageBarrier(cmd, image, device.ImageLayoutUndefined, device.ImageLayoutColorAttachmentOptimal)
	c.drv.CmdBeginRenderPass(cmd, device.RenderPassBegin{
		RenderPass:  c.renderPass,
		Framebuffer: c.framebuffers[index],
		Extent:      c.extent,
		ClearColor:  c.config.ClearColor,
	})
	c.drv.CmdEndRenderPass(cmd)
	c.drv.CmdImageBarrier(cmd, image, device.ImageLayoutColorAttachmentOptimal, device.ImageLayoutPresentSrc)

	if err := c.drv.EndCommandBuffer(cmd); err != nil {
		return driverError("end command buffer", err)
	}
	return nil
}
