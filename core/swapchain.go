// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	log "github.com/sirupsen/logrus"

	"github.com/devblok/succotash/device"
)

// compositeAlphaOrder is the precedence used by ChooseCompositeAlpha.
var compositeAlphaOrder = []device.CompositeAlpha{
	device.CompositeAlphaOpaque,
	device.CompositeAlphaPreMultiplied,
	device.CompositeAlphaPostMultiplied,
	device.CompositeAlphaInherit,
}

// ClampImageCount clamps desired into the image count range of caps.
// A maximum of zero means there is no upper bound.
func ClampImageCount(logger log.FieldLogger, desired uint32, caps device.SurfaceCapabilities) uint32 {
	count := desired
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}
	if count != desired {
		logger.WithFields(log.Fields{
			"desired": desired,
			"min":     caps.MinImageCount,
			"max":     caps.MaxImageCount,
			"clamped": count,
		}).Warn("swapchain image count clamped")
	}
	return count
}

// ChoosePreTransform prefers identity and falls back to the current transform.
func ChoosePreTransform(caps device.SurfaceCapabilities) device.SurfaceTransform {
	if caps.SupportedTransforms&device.TransformIdentity != 0 {
		return device.TransformIdentity
	}
	return caps.CurrentTransform
}

// ChooseCompositeAlpha returns the first supported mode in the order opaque,
// pre-multiplied, post-multiplied, inherit. Opaque is returned for an
// empty set, which drivers never report.
func ChooseCompositeAlpha(caps device.SurfaceCapabilities) device.CompositeAlpha {
	for _, alpha := range compositeAlphaOrder {
		if caps.SupportedCompositeAlpha&alpha != 0 {
			return alpha
		}
	}
	return device.CompositeAlphaOpaque
}

func (c *Context) createSwapchain() error {
	desired := c.config.SwapchainSize
	if desired == 0 {
		desired = DefaultSwapchainSize
	}

	info := device.SwapchainInfo{
		Surface:        c.surface,
		MinImageCount:  ClampImageCount(c.logger(), desired, c.capabilities),
		Format:         c.surfaceFormat,
		Extent:         c.extent,
		ArrayLayers:    1,
		PreTransform:   ChoosePreTransform(c.capabilities),
		CompositeAlpha: ChooseCompositeAlpha(c.capabilities),
		PresentMode:    c.presentMode,
		Clipped:        true,
	}

	swapchain, err := c.drv.CreateSwapchain(c.device, info)
	if err != nil {
		return driverError("create swapchain", err)
	}
	dev := c.device
	c.swapchain = swapchain
	c.imageCount = info.MinImageCount
	c.surfaceScope.push(func() {
		c.drv.DestroySwapchain(dev, swapchain)
	})

	images, err := c.drv.SwapchainImages(c.device, swapchain)
	if err != nil {
		return driverError("get swapchain images", err)
	}
	c.images = images

	c.logger().WithFields(log.Fields{
		"requested":      info.MinImageCount,
		"images":         len(images),
		"compositeAlpha": info.CompositeAlpha,
	}).Info("swapchain created")
	return nil
}

func (c *Context) createFramebuffers() error {
	dev := c.device

	renderPass, err := c.drv.CreateRenderPass(dev, c.surfaceFormat.Format)
	if err != nil {
		return driverError("create render pass", err)
	}
	c.renderPass = renderPass
	c.surfaceScope.push(func() {
		c.drv.DestroyRenderPass(dev, renderPass)
	})

	c.views = make([]device.ImageView, 0, len(c.images))
	c.framebuffers = make([]device.Framebuffer, 0, len(c.images))
	for _, image := range c.images {
		view, err := c.drv.CreateImageView(dev, image, c.surfaceFormat.Format)
		if err != nil {
			return driverError("create image view", err)
		}
		c.views = append(c.views, view)
		c.surfaceScope.push(func() {
			c.drv.DestroyImageView(dev, view)
		})

		fb, err := c.drv.CreateFramebuffer(dev, renderPass, view, c.extent)
		if err != nil {
			return driverError("create framebuffer", err)
		}
		c.framebuffers = append(c.framebuffers, fb)
		c.surfaceScope.push(func() {
			c.drv.DestroyFramebuffer(dev, fb)
		})
	}
	return nil
}
