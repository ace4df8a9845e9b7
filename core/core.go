// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core drives a graphics device from a bare driver to a context
// that can present to a window surface.
package core

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/succotash/device"
	"github.com/devblok/succotash/utility/stopwatch"
)

// Context owns every handle created while bootstrapping a device. It is
// not safe for concurrent use.
type Context struct {
	drv    device.Driver
	log    log.FieldLogger
	id     uuid.UUID
	config RendererConfiguration

	extensions Extensions
	requires   Requirements

	// instance scope
	instance        device.Instance
	physicalDevices []device.PhysicalDevice
	selection       Selection
	device          device.Device
	queue           device.Queue
	commandPool     device.CommandPool
	commandBuffer   device.CommandBuffer

	// surface scope
	surface       device.Surface
	surfaceFormat device.SurfaceFormat
	capabilities  device.SurfaceCapabilities
	extent        device.Extent2D
	presentMode   device.PresentMode
	imageCount    uint32
	swapchain     device.Swapchain
	images        []device.Image
	views         []device.ImageView
	renderPass    device.RenderPass
	framebuffers  []device.Framebuffer

	instanceReady bool
	surfaceReady  bool
	instanceScope teardown
	logicalScope  teardown
	surfaceScope  teardown

	frameWatch *stopwatch.Stopwatch
}

// Option configures a Context during Init.
type Option func(*Context)

// WithLogger sets the logger the context reports to.
func WithLogger(logger log.FieldLogger) Option {
	return func(c *Context) {
		c.log = logger
	}
}

// WithConfiguration sets the renderer configuration.
func WithConfiguration(cfg RendererConfiguration) Option {
	return func(c *Context) {
		c.config = cfg
	}
}

// Allocate returns an uninitialised context. Init must be called before use.
func Allocate() *Context {
	return &Context{}
}

// SizeofContext returns the size of the context value.
func SizeofContext() uintptr {
	return unsafe.Sizeof(Context{})
}

// Init resets the context and binds it to drv. Graphics is required by
// default, compute and present are not.
func (c *Context) Init(drv device.Driver, opts ...Option) error {
	if drv == nil {
		return errors.New("core.Init(): nil driver")
	}
	if c.instanceScope.len() > 0 || c.logicalScope.len() > 0 || c.surfaceScope.len() > 0 {
		c.releaseInstance()
	}

	*c = Context{
		drv: drv,
		id:  uuid.New(),
		config: RendererConfiguration{
			SwapchainSize: DefaultSwapchainSize,
		},
		requires: Requirements{
			Graphics: true,
		},
		frameWatch: stopwatch.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.StandardLogger()
	}
	c.log = c.log.WithField("context", c.id.String())
	if exts := c.config.InstanceExtensions; len(exts) > 0 {
		c.extensions.Append(exts...)
	}
	return nil
}

// ProvideExtensions appends instance extension names. Call order is kept.
func (c *Context) ProvideExtensions(names ...string) {
	c.extensions.Append(names...)
}

// SetRequiresCompute sets whether the queue family must support compute.
func (c *Context) SetRequiresCompute(required bool) {
	c.requires.Compute = required
}

// SetRequiresGraphics sets whether the queue family must support graphics.
func (c *Context) SetRequiresGraphics(required bool) {
	c.requires.Graphics = required
}

// SetRequiresPresent sets whether the queue family must support presenting.
func (c *Context) SetRequiresPresent(required bool) {
	c.requires.Present = required
}

// Requirements returns the current requirement flags.
func (c *Context) Requirements() Requirements {
	return c.requires
}

// Extensions returns the registered instance extensions.
func (c *Context) Extensions() []string {
	return c.extensions.Names()
}

// ID identifies the context in log output.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Instance returns the instance handle. It is only valid after a
// successful CreateInstance.
func (c *Context) Instance() (device.Instance, error) {
	if !c.instanceReady {
		return 0, c.notReady("Instance")
	}
	return c.instance, nil
}

// Device returns the logical device handle.
func (c *Context) Device() device.Device {
	return c.device
}

// PhysicalDevice returns the selected physical device.
func (c *Context) PhysicalDevice() device.PhysicalDevice {
	return c.selection.Device
}

// Selection returns the full outcome of device selection.
func (c *Context) Selection() Selection {
	return c.selection
}

// QueueFamilyIndex returns the selected queue family.
func (c *Context) QueueFamilyIndex() uint32 {
	return c.selection.Family
}

// Extent returns the negotiated swapchain extent.
func (c *Context) Extent() device.Extent2D {
	return c.extent
}

// SurfaceFormat returns the negotiated surface format.
func (c *Context) SurfaceFormat() device.SurfaceFormat {
	return c.surfaceFormat
}

// PresentMode returns the present mode of the swapchain.
func (c *Context) PresentMode() device.PresentMode {
	return c.presentMode
}

// ImageCount returns the number of swapchain images actually created.
func (c *Context) ImageCount() int {
	return len(c.images)
}

// Swapchain returns the swapchain handle.
func (c *Context) Swapchain() device.Swapchain {
	return c.swapchain
}

// Free destroys every handle the context owns in reverse order of creation.
// Unless subAllocationsOnly is set the context also drops its driver and
// logger and returns to the uninitialised state.
func (c *Context) Free(subAllocationsOnly bool) {
	if c.drv == nil {
		return
	}
	c.releaseInstance()
	c.extensions.Reset()

	if !subAllocationsOnly {
		*c = Context{}
	}
}

// releaseSurface waits for the device and destroys the surface scope.
func (c *Context) releaseSurface() {
	if c.surfaceScope.len() == 0 && c.surface == 0 {
		return
	}
	c.waitIdle()
	c.surfaceScope.run()

	c.surface = 0
	c.surfaceFormat = device.SurfaceFormat{}
	c.capabilities = device.SurfaceCapabilities{}
	c.extent = device.Extent2D{}
	c.presentMode = 0
	c.imageCount = 0
	c.swapchain = 0
	c.images = nil
	c.views = nil
	c.renderPass = 0
	c.framebuffers = nil
	c.surfaceReady = false
}

// releaseLogical waits for the device and destroys it together with its
// command pool and buffer.
func (c *Context) releaseLogical() {
	c.waitIdle()
	c.logicalScope.run()

	c.device = 0
	c.queue = 0
	c.commandPool = 0
	c.commandBuffer = 0
}

// releaseInstance destroys every scope.
func (c *Context) releaseInstance() {
	c.releaseSurface()
	c.releaseLogical()
	c.instanceScope.run()

	c.instance = 0
	c.physicalDevices = nil
	c.selection = Selection{}
	c.instanceReady = false
}

func (c *Context) waitIdle() {
	if c.device == 0 {
		return
	}
	if err := c.drv.DeviceWaitIdle(c.device); err != nil {
		c.logger().WithError(err).Warn("device did not go idle before release")
	}
}

func (c *Context) logger() log.FieldLogger {
	if c.log == nil {
		return log.StandardLogger()
	}
	return c.log
}

// notReady reports a call made before its prerequisite succeeded.
func (c *Context) notReady(op string) error {
	c.logger().WithField("op", op).Error("called before its prerequisite succeeded")
	return errors.Wrapf(ErrNotReady, "%s", op)
}
