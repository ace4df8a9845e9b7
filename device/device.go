// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device describes the explicit graphics API object model the
// bootstrap pipeline drives: instances, physical devices, logical devices,
// surfaces and swapchains. Driver implementations translate it into calls
// to a concrete API.
package device

// Handle is an opaque driver object reference. The zero value is the null handle.
type Handle uint64

// Handle kinds. Each one is only meaningful to the Driver that produced it.
type (
	Instance       Handle
	PhysicalDevice Handle
	Device         Handle
	Queue          Handle
	CommandPool    Handle
	CommandBuffer  Handle
	Surface        Handle
	Swapchain      Handle
	Image          Handle
	ImageView      Handle
	RenderPass     Handle
	Framebuffer    Handle
	Semaphore      Handle
)

// Type classifies a physical device.
type Type int

// Physical device types, in the order the API reports them.
const (
	TypeOther Type = iota
	TypeIntegratedGPU
	TypeDiscreteGPU
	TypeVirtualGPU
	TypeCPU
)

func (t Type) String() string {
	switch t {
	case TypeIntegratedGPU:
		return "integrated"
	case TypeDiscreteGPU:
		return "discrete"
	case TypeVirtualGPU:
		return "virtual"
	case TypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// QueueFlags is the capability set of a queue family.
type QueueFlags uint32

// Queue family capability bits.
const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
)

// QueueFamily describes one queue family of a physical device.
type QueueFamily struct {
	Flags      QueueFlags
	QueueCount uint32
}

// Properties holds general physical device information.
type Properties struct {
	ID            uint32
	VendorID      uint32
	DriverVersion uint32
	Name          string
	Type          Type
}

// MemoryHeap is one memory heap reported by a physical device.
type MemoryHeap struct {
	Size        uint64
	DeviceLocal bool
}

// Format is a pixel format. Values match the Vulkan enumeration.
type Format int32

// Formats used by the bootstrap pipeline.
const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

// ColorSpace is a presentation color space.
type ColorSpace int32

// ColorSpaceSrgbNonlinear is the color space every surface supports.
const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat pairs a pixel format with its color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode selects how images are queued for presentation.
type PresentMode int32

// Present modes. Only FIFO is guaranteed to be available.
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

// SurfaceTransform is a set of surface transform bits.
type SurfaceTransform uint32

// Surface transform bits.
const (
	TransformIdentity SurfaceTransform = 1 << iota
	TransformRotate90
	TransformRotate180
	TransformRotate270
	TransformHorizontalMirror
	TransformHorizontalMirrorRotate90
	TransformHorizontalMirrorRotate180
	TransformHorizontalMirrorRotate270
	TransformInherit
)

// CompositeAlpha is a set of composite alpha bits.
type CompositeAlpha uint32

// Composite alpha bits.
const (
	CompositeAlphaOpaque CompositeAlpha = 1 << iota
	CompositeAlphaPreMultiplied
	CompositeAlphaPostMultiplied
	CompositeAlphaInherit
)

func (a CompositeAlpha) String() string {
	switch a {
	case CompositeAlphaOpaque:
		return "opaque"
	case CompositeAlphaPreMultiplied:
		return "pre-multiplied"
	case CompositeAlphaPostMultiplied:
		return "post-multiplied"
	case CompositeAlphaInherit:
		return "inherit"
	default:
		return "mixed"
	}
}

// Extent2D is a two dimensional size in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// UndefinedExtent is the reserved current extent meaning the
// swapchain decides the surface size.
const UndefinedExtent uint32 = 0xFFFFFFFF

// SurfaceCapabilities are the limits a surface reports for a physical device.
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	SupportedTransforms     SurfaceTransform
	CurrentTransform        SurfaceTransform
	SupportedCompositeAlpha CompositeAlpha
}

// ImageLayout is the memory layout of an image.
type ImageLayout int32

// Image layouts used by the frame update.
const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

// ApplicationInfo identifies the application to the driver.
type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
}

// InstanceInfo configures instance creation.
type InstanceInfo struct {
	Application ApplicationInfo
	Extensions  []string
	Layers      []string
}

// QueueInfo requests queues from a single family.
type QueueInfo struct {
	FamilyIndex uint32
	Priorities  []float32
}

// DeviceInfo configures logical device creation.
type DeviceInfo struct {
	Queues     []QueueInfo
	Extensions []string
}

// SwapchainInfo configures swapchain creation.
type SwapchainInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent2D
	ArrayLayers    uint32
	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
	OldSwapchain   Swapchain
}

// RenderPassBegin describes a render pass instance recorded into a command buffer.
type RenderPassBegin struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Extent      Extent2D
	ClearColor  [4]float32
}

// Driver is the narrow surface of the graphics API used by the bootstrap
// pipeline. Methods returning an error report driver result codes as
// *ResultError.
type Driver interface {
	CreateInstance(info InstanceInfo) (Instance, error)
	DestroyInstance(instance Instance)
	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error)

	QueueFamilies(pd PhysicalDevice) []QueueFamily
	Properties(pd PhysicalDevice) Properties
	MemoryHeaps(pd PhysicalDevice) []MemoryHeap
	SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error)
	SurfaceFormats(pd PhysicalDevice, surface Surface) ([]SurfaceFormat, error)
	SurfaceCapabilities(pd PhysicalDevice, surface Surface) (SurfaceCapabilities, error)
	DestroySurface(instance Instance, surface Surface)

	CreateDevice(pd PhysicalDevice, info DeviceInfo) (Device, error)
	DestroyDevice(dev Device)
	DeviceWaitIdle(dev Device) error
	GetQueue(dev Device, family, index uint32) Queue

	CreateCommandPool(dev Device, family uint32) (CommandPool, error)
	DestroyCommandPool(dev Device, pool CommandPool)
	AllocateCommandBuffer(dev Device, pool CommandPool) (CommandBuffer, error)
	FreeCommandBuffer(dev Device, pool CommandPool, cmd CommandBuffer)

	CreateSwapchain(dev Device, info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(dev Device, swapchain Swapchain)
	SwapchainImages(dev Device, swapchain Swapchain) ([]Image, error)
	CreateImageView(dev Device, image Image, format Format) (ImageView, error)
	DestroyImageView(dev Device, view ImageView)
	CreateRenderPass(dev Device, format Format) (RenderPass, error)
	DestroyRenderPass(dev Device, pass RenderPass)
	CreateFramebuffer(dev Device, pass RenderPass, view ImageView, extent Extent2D) (Framebuffer, error)
	DestroyFramebuffer(dev Device, fb Framebuffer)

	CreateSemaphore(dev Device) (Semaphore, error)
	DestroySemaphore(dev Device, sem Semaphore)
	AcquireNextImage(dev Device, swapchain Swapchain, timeout uint64, sem Semaphore) (uint32, error)

	BeginCommandBuffer(cmd CommandBuffer) error
	CmdImageBarrier(cmd CommandBuffer, image Image, from, to ImageLayout)
	CmdBeginRenderPass(cmd CommandBuffer, begin RenderPassBegin)
	CmdEndRenderPass(cmd CommandBuffer)
	EndCommandBuffer(cmd CommandBuffer) error

	QueueSubmit(queue Queue, cmd CommandBuffer, wait Semaphore) error
	QueuePresent(queue Queue, swapchain Swapchain, imageIndex uint32) error
	QueueWaitIdle(queue Queue) error
}
