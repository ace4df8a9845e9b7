// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/succotash/device"
)

// DefaultSurfaceFormat replaces an undefined format reported by a surface.
const DefaultSurfaceFormat = device.FormatB8G8R8A8Unorm

// ProvideSurface binds a window surface to the context, negotiates its
// format and extent and builds the swapchain with its framebuffers. The
// context takes ownership of surface, unless it fails with ErrNotReady or
// surface is null: the caller still owns it then. A previously bound
// surface is released once the device is idle.
func (c *Context) ProvideSurface(surface device.Surface, width, height uint16) error {
	if !c.instanceReady {
		return c.notReady("ProvideSurface")
	}
	if surface == 0 {
		return errors.New("core.ProvideSurface(): null surface")
	}
	c.releaseSurface()

	c.requires.Present = true
	c.surface = surface
	instance := c.instance
	c.surfaceScope.push(func() {
		c.drv.DestroySurface(instance, surface)
	})

	requested := device.Extent2D{Width: uint32(width), Height: uint32(height)}
	err := c.runStages("provide surface", []stage{
		{"verify present support", c.verifyPresentSupport},
		{"negotiate surface", func() error { return c.negotiateSurface(requested) }},
		{"create swapchain", c.createSwapchain},
		{"create framebuffers", c.createFramebuffers},
	})
	if err != nil {
		return err
	}

	c.surfaceReady = true
	return nil
}

// verifyPresentSupport checks the selected family can present to the
// bound surface. Selection ran before any surface existed, so when it
// cannot, devices are ranked again with present support known and the
// logical context is rebuilt on the new choice.
func (c *Context) verifyPresentSupport() error {
	supported, err := c.drv.SurfaceSupport(c.selection.Device, c.selection.Family, c.surface)
	if err != nil {
		return driverError("query surface support", err)
	}
	if supported {
		return nil
	}

	selection, err := c.rankDevices(c.surface)
	if errors.Is(err, ErrNoSuitableDevice) {
		return ErrPresentUnsupported
	}
	if err != nil {
		return err
	}

	c.logger().WithFields(log.Fields{
		"device":         selection.Name,
		"family":         selection.Family,
		"previousDevice": c.selection.Name,
		"previousFamily": c.selection.Family,
	}).Info("reselected physical device for present support")

	c.releaseLogical()
	c.selection = selection
	if err := c.createLogicalContext(); err != nil {
		c.instanceReady = false
		return err
	}
	return nil
}

func (c *Context) negotiateSurface(requested device.Extent2D) error {
	formats, err := c.drv.SurfaceFormats(c.selection.Device, c.surface)
	if err != nil {
		return driverError("query surface formats", err)
	}
	format, err := ChooseSurfaceFormat(formats)
	if err != nil {
		return err
	}

	caps, err := c.drv.SurfaceCapabilities(c.selection.Device, c.surface)
	if err != nil {
		return driverError("query surface capabilities", err)
	}

	extent := ResolveExtent(c.logger(), caps, requested)
	if err := CheckExtent(extent); err != nil {
		c.logger().WithFields(log.Fields{
			"width":  extent.Width,
			"height": extent.Height,
		}).Error("surface extent out of range")
		return err
	}

	c.surfaceFormat = format
	c.capabilities = caps
	c.extent = extent
	c.presentMode = device.PresentModeFifo
	c.logger().WithFields(log.Fields{
		"format":     format.Format,
		"colorSpace": format.ColorSpace,
		"width":      extent.Width,
		"height":     extent.Height,
	}).Info("surface negotiated")
	return nil
}

// ChooseSurfaceFormat picks the first reported format. A lone undefined
// format means any format is accepted, DefaultSurfaceFormat is used then.
func ChooseSurfaceFormat(formats []device.SurfaceFormat) (device.SurfaceFormat, error) {
	if len(formats) == 0 {
		return device.SurfaceFormat{}, ErrNoSurfaceFormats
	}
	if len(formats) == 1 && formats[0].Format == device.FormatUndefined {
		return device.SurfaceFormat{
			Format:     DefaultSurfaceFormat,
			ColorSpace: formats[0].ColorSpace,
		}, nil
	}
	return formats[0], nil
}

// ResolveExtent returns the extent the swapchain should use. When the
// surface leaves the choice to the caller the requested size is clamped
// per axis into the supported range, otherwise the current extent wins.
func ResolveExtent(logger log.FieldLogger, caps device.SurfaceCapabilities, requested device.Extent2D) device.Extent2D {
	if caps.CurrentExtent.Width != device.UndefinedExtent {
		return caps.CurrentExtent
	}

	return device.Extent2D{
		Width:  clampAxis(logger, "width", requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampAxis(logger, "height", requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clampAxis(logger log.FieldLogger, axis string, v, min, max uint32) uint32 {
	clamped := v
	if clamped < min {
		clamped = min
	} else if clamped > max {
		clamped = max
	}
	if clamped != v {
		logger.WithFields(log.Fields{
			"axis":      axis,
			"requested": v,
			"clamped":   clamped,
		}).Warn("surface extent clamped")
	}
	return clamped
}

// CheckExtent fails with ErrExtentOverflow when either side does not fit
// in 16 bits.
func CheckExtent(extent device.Extent2D) error {
	if extent.Width > math.MaxUint16 || extent.Height > math.MaxUint16 {
		return errors.Wrapf(ErrExtentOverflow, "%dx%d", extent.Width, extent.Height)
	}
	return nil
}
