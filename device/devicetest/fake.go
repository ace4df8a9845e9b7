// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package devicetest provides a scriptable in-memory device.Driver.
package devicetest

import (
	"sort"
	"strings"

	"github.com/devblok/succotash/device"
)

// PhysicalDevice scripts one physical device of the fake.
type PhysicalDevice struct {
	Properties device.Properties
	Families   []device.QueueFamily
	Heaps      []device.MemoryHeap
	// Present is the per family present support. A nil slice means every
	// family can present.
	Present []bool
}

// GiB is one gibibyte.
const GiB uint64 = 1 << 30

// Discrete returns a discrete device with one graphics family.
func Discrete(name string, memory uint64) PhysicalDevice {
	return gpu(name, device.TypeDiscreteGPU, memory)
}

// Integrated returns an integrated device with one graphics family.
func Integrated(name string, memory uint64) PhysicalDevice {
	return gpu(name, device.TypeIntegratedGPU, memory)
}

func gpu(name string, t device.Type, memory uint64) PhysicalDevice {
	return PhysicalDevice{
		Properties: device.Properties{Name: name, Type: t},
		Families: []device.QueueFamily{
			{Flags: device.QueueGraphics | device.QueueCompute | device.QueueTransfer, QueueCount: 16},
		},
		Heaps: []device.MemoryHeap{{Size: memory, DeviceLocal: true}},
	}
}

// Fake is an in-memory Driver. It records every call, tracks which
// handles are alive and fails calls on request.
type Fake struct {
	Devices      []PhysicalDevice
	Formats      []device.SurfaceFormat
	Capabilities device.SurfaceCapabilities
	// Images is the number of swapchain images created. Zero means the
	// requested minimum image count.
	Images int

	// Calls lists driver methods in the order they were called.
	Calls []string

	LastInstance    device.InstanceInfo
	LastDevice      device.DeviceInfo
	LastSwapchain   device.SwapchainInfo
	LastRenderPass  device.RenderPassBegin
	Barriers        [][2]device.ImageLayout
	AcquireTimeouts []uint64

	failures map[string]error
	next     device.Handle
	live     map[device.Handle]string
	physical map[device.PhysicalDevice]int
	acquired uint32
}

var _ device.Driver = (*Fake)(nil)

// New returns a fake with a single discrete device and a surface that
// accepts any extent between 1x1 and 4096x4096.
func New() *Fake {
	return &Fake{
		Devices: []PhysicalDevice{Discrete("Fake Discrete", 4*GiB)},
		Formats: []device.SurfaceFormat{
			{Format: device.FormatB8G8R8A8Srgb, ColorSpace: device.ColorSpaceSrgbNonlinear},
		},
		Capabilities: device.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           device.Extent2D{Width: device.UndefinedExtent, Height: device.UndefinedExtent},
			MinImageExtent:          device.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          device.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms:     device.TransformIdentity,
			CurrentTransform:        device.TransformIdentity,
			SupportedCompositeAlpha: device.CompositeAlphaOpaque,
		},
		failures: make(map[string]error),
		live:     make(map[device.Handle]string),
		physical: make(map[device.PhysicalDevice]int),
	}
}

// FailOn makes method return a driver error with code until Recover is called.
func (f *Fake) FailOn(method string, code int32) {
	f.failures[method] = device.NewResultError("vk"+method, code)
}

// Recover clears every scripted failure.
func (f *Fake) Recover() {
	f.failures = make(map[string]error)
}

// NewSurface creates a live surface handle, as a windowing layer would.
func (f *Fake) NewSurface() device.Surface {
	return device.Surface(f.alloc("Surface"))
}

// Live counts live handles per kind.
func (f *Fake) Live() map[string]int {
	counts := make(map[string]int)
	for _, kind := range f.live {
		counts[kind]++
	}
	return counts
}

// LiveCount returns the total number of live handles.
func (f *Fake) LiveCount() int {
	return len(f.live)
}

// Called reports whether method was called at least once.
func (f *Fake) Called(method string) bool {
	return f.Count(method) > 0
}

// Count returns how many times method was called.
func (f *Fake) Count(method string) int {
	n := 0
	for _, call := range f.Calls {
		if call == method {
			n++
		}
	}
	return n
}

// CallsSince returns the calls recorded after the first n.
func (f *Fake) CallsSince(n int) []string {
	if n >= len(f.Calls) {
		return nil
	}
	out := make([]string, len(f.Calls)-n)
	copy(out, f.Calls[n:])
	return out
}

// String lists live handles, for test failure messages.
func (f *Fake) String() string {
	kinds := make([]string, 0, len(f.live))
	for _, kind := range f.live {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return "live: [" + strings.Join(kinds, " ") + "]"
}

func (f *Fake) call(method string) error {
	f.Calls = append(f.Calls, method)
	return f.failures[method]
}

func (f *Fake) alloc(kind string) device.Handle {
	f.next++
	f.live[f.next] = kind
	return f.next
}

func (f *Fake) release(h device.Handle) {
	delete(f.live, h)
}

func (f *Fake) lookup(pd device.PhysicalDevice) PhysicalDevice {
	idx, ok := f.physical[pd]
	if !ok || idx >= len(f.Devices) {
		return PhysicalDevice{}
	}
	return f.Devices[idx]
}

// CreateInstance implements device.Driver.
func (f *Fake) CreateInstance(info device.InstanceInfo) (device.Instance, error) {
	if err := f.call("CreateInstance"); err != nil {
		return 0, err
	}
	f.LastInstance = info
	return device.Instance(f.alloc("Instance")), nil
}

// DestroyInstance implements device.Driver.
func (f *Fake) DestroyInstance(instance device.Instance) {
	f.call("DestroyInstance")
	f.release(device.Handle(instance))
}

// EnumeratePhysicalDevices implements device.Driver.
func (f *Fake) EnumeratePhysicalDevices(instance device.Instance) ([]device.PhysicalDevice, error) {
	if err := f.call("EnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	pds := make([]device.PhysicalDevice, 0, len(f.Devices))
	for i := range f.Devices {
		f.next++
		pd := device.PhysicalDevice(f.next)
		f.physical[pd] = i
		pds = append(pds, pd)
	}
	return pds, nil
}

// QueueFamilies implements device.Driver.
func (f *Fake) QueueFamilies(pd device.PhysicalDevice) []device.QueueFamily {
	f.call("QueueFamilies")
	return f.lookup(pd).Families
}

// Properties implements device.Driver.
func (f *Fake) Properties(pd device.PhysicalDevice) device.Properties {
	f.call("Properties")
	return f.lookup(pd).Properties
}

// MemoryHeaps implements device.Driver.
func (f *Fake) MemoryHeaps(pd device.PhysicalDevice) []device.MemoryHeap {
	f.call("MemoryHeaps")
	return f.lookup(pd).Heaps
}

// SurfaceSupport implements device.Driver.
func (f *Fake) SurfaceSupport(pd device.PhysicalDevice, family uint32, surface device.Surface) (bool, error) {
	if err := f.call("SurfaceSupport"); err != nil {
		return false, err
	}
	present := f.lookup(pd).Present
	if present == nil {
		return true, nil
	}
	return int(family) < len(present) && present[family], nil
}

// SurfaceFormats implements device.Driver.
func (f *Fake) SurfaceFormats(pd device.PhysicalDevice, surface device.Surface) ([]device.SurfaceFormat, error) {
	if err := f.call("SurfaceFormats"); err != nil {
		return nil, err
	}
	return f.Formats, nil
}

// SurfaceCapabilities implements device.Driver.
func (f *Fake) SurfaceCapabilities(pd device.PhysicalDevice, surface device.Surface) (device.SurfaceCapabilities, error) {
	if err := f.call("SurfaceCapabilities"); err != nil {
		return device.SurfaceCapabilities{}, err
	}
	return f.Capabilities, nil
}

// DestroySurface implements device.Driver.
func (f *Fake) DestroySurface(instance device.Instance, surface device.Surface) {
	f.call("DestroySurface")
	f.release(device.Handle(surface))
}

// CreateDevice implements device.Driver.
func (f *Fake) CreateDevice(pd device.PhysicalDevice, info device.DeviceInfo) (device.Device, error) {
	if err := f.call("CreateDevice"); err != nil {
		return 0, err
	}
	f.LastDevice = info
	return device.Device(f.alloc("Device")), nil
}

// DestroyDevice implements device.Driver.
func (f *Fake) DestroyDevice(dev device.Device) {
	f.call("DestroyDevice")
	f.release(device.Handle(dev))
}

// DeviceWaitIdle implements device.Driver.
func (f *Fake) DeviceWaitIdle(dev device.Device) error {
	return f.call("DeviceWaitIdle")
}

// GetQueue implements device.Driver. Queues belong to the device and are
// not tracked.
func (f *Fake) GetQueue(dev device.Device, family, index uint32) device.Queue {
	f.call("GetQueue")
	f.next++
	return device.Queue(f.next)
}

// CreateCommandPool implements device.Driver.
func (f *Fake) CreateCommandPool(dev device.Device, family uint32) (device.CommandPool, error) {
	if err := f.call("CreateCommandPool"); err != nil {
		return 0, err
	}
	return device.CommandPool(f.alloc("CommandPool")), nil
}

// DestroyCommandPool implements device.Driver.
func (f *Fake) DestroyCommandPool(dev device.Device, pool device.CommandPool) {
	f.call("DestroyCommandPool")
	f.release(device.Handle(pool))
}

// AllocateCommandBuffer implements device.Driver.
func (f *Fake) AllocateCommandBuffer(dev device.Device, pool device.CommandPool) (device.CommandBuffer, error) {
	if err := f.call("AllocateCommandBuffer"); err != nil {
		return 0, err
	}
	return device.CommandBuffer(f.alloc("CommandBuffer")), nil
}

// FreeCommandBuffer implements device.Driver.
func (f *Fake) FreeCommandBuffer(dev device.Device, pool device.CommandPool, cmd device.CommandBuffer) {
	f.call("FreeCommandBuffer")
	f.release(device.Handle(cmd))
}

// CreateSwapchain implements device.Driver.
func (f *Fake) CreateSwapchain(dev device.Device, info device.SwapchainInfo) (device.Swapchain, error) {
	if err := f.call("CreateSwapchain"); err != nil {
		return 0, err
	}
	f.LastSwapchain = info
	return device.Swapchain(f.alloc("Swapchain")), nil
}

// DestroySwapchain implements device.Driver.
func (f *Fake) DestroySwapchain(dev device.Device, swapchain device.Swapchain) {
	f.call("DestroySwapchain")
	f.release(device.Handle(swapchain))
}

// SwapchainImages implements device.Driver. Images belong to the
// swapchain and are not tracked.
func (f *Fake) SwapchainImages(dev device.Device, swapchain device.Swapchain) ([]device.Image, error) {
	if err := f.call("SwapchainImages"); err != nil {
		return nil, err
	}
	n := f.Images
	if n == 0 {
		n = int(f.LastSwapchain.MinImageCount)
	}
	images := make([]device.Image, n)
	for i := range images {
		f.next++
		images[i] = device.Image(f.next)
	}
	return images, nil
}

// CreateImageView implements device.Driver.
func (f *Fake) CreateImageView(dev device.Device, image device.Image, format device.Format) (device.ImageView, error) {
	if err := f.call("CreateImageView"); err != nil {
		return 0, err
	}
	return device.ImageView(f.alloc("ImageView")), nil
}

// DestroyImageView implements device.Driver.
func (f *Fake) DestroyImageView(dev device.Device, view device.ImageView) {
	f.call("DestroyImageView")
	f.release(device.Handle(view))
}

// CreateRenderPass implements device.Driver.
func (f *Fake) CreateRenderPass(dev device.Device, format device.Format) (device.RenderPass, error) {
	if err := f.call("CreateRenderPass"); err != nil {
		return 0, err
	}
	return device.RenderPass(f.alloc("RenderPass")), nil
}

// DestroyRenderPass implements device.Driver.
func (f *Fake) DestroyRenderPass(dev device.Device, pass device.RenderPass) {
	f.call("DestroyRenderPass")
	f.release(device.Handle(pass))
}

// CreateFramebuffer implements device.Driver.
func (f *Fake) CreateFramebuffer(dev device.Device, pass device.RenderPass, view device.ImageView, extent device.Extent2D) (device.Framebuffer, error) {
	if err := f.call("CreateFramebuffer"); err != nil {
		return 0, err
	}
	return device.Framebuffer(f.alloc("Framebuffer")), nil
}

// DestroyFramebuffer implements device.Driver.
func (f *Fake) DestroyFramebuffer(dev device.Device, fb device.Framebuffer) {
	f.call("DestroyFramebuffer")
	f.release(device.Handle(fb))
}

// CreateSemaphore implements device.Driver.
func (f *Fake) CreateSemaphore(dev device.Device) (device.Semaphore, error) {
	if err := f.call("CreateSemaphore"); err != nil {
		return 0, err
	}
	return device.Semaphore(f.alloc("Semaphore")), nil
}

// DestroySemaphore implements device.Driver.
func (f *Fake) DestroySemaphore(dev device.Device, sem device.Semaphore) {
	f.call("DestroySemaphore")
	f.release(device.Handle(sem))
}

// AcquireNextImage implements device.Driver. Images are handed out round robin.
func (f *Fake) AcquireNextImage(dev device.Device, swapchain device.Swapchain, timeout uint64, sem device.Semaphore) (uint32, error) {
	if err := f.call("AcquireNextImage"); err != nil {
		return 0, err
	}
	f.AcquireTimeouts = append(f.AcquireTimeouts, timeout)

	n := uint32(f.Images)
	if n == 0 {
		n = f.LastSwapchain.MinImageCount
	}
	index := f.acquired % n
	f.acquired++
	return index, nil
}

// BeginCommandBuffer implements device.Driver.
func (f *Fake) BeginCommandBuffer(cmd device.CommandBuffer) error {
	return f.call("BeginCommandBuffer")
}

// CmdImageBarrier implements device.Driver.
func (f *Fake) CmdImageBarrier(cmd device.CommandBuffer, image device.Image, from, to device.ImageLayout) {
	f.call("CmdImageBarrier")
	f.Barriers = append(f.Barriers, [2]device.ImageLayout{from, to})
}

// CmdBeginRenderPass implements device.Driver.
func (f *Fake) CmdBeginRenderPass(cmd device.CommandBuffer, begin device.RenderPassBegin) {
	f.call("CmdBeginRenderPass")
	f.LastRenderPass = begin
}

// CmdEndRenderPass implements device.Driver.
func (f *Fake) CmdEndRenderPass(cmd device.CommandBuffer) {
	f.call("CmdEndRenderPass")
}

// EndCommandBuffer implements device.Driver.
func (f *Fake) EndCommandBuffer(cmd device.CommandBuffer) error {
	return f.call("EndCommandBuffer")
}

// QueueSubmit implements device.Driver.
func (f *Fake) QueueSubmit(queue device.Queue, cmd device.CommandBuffer, wait device.Semaphore) error {
	return f.call("QueueSubmit")
}

// QueuePresent implements device.Driver.
func (f *Fake) QueuePresent(queue device.Queue, swapchain device.Swapchain, imageIndex uint32) error {
	return f.call("QueuePresent")
}

// QueueWaitIdle implements device.Driver.
func (f *Fake) QueueWaitIdle(queue device.Queue) error {
	return f.call("QueueWaitIdle")
}
