// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/devblok/vulkan"
)

// NewVulkan loads the Vulkan loader and returns a Driver backed by it.
// procAddr is the vkGetInstanceProcAddr provided by the windowing layer;
// when nil the system loader is used.
func NewVulkan(procAddr unsafe.Pointer) (*Vulkan, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	return &Vulkan{
		objects: make(map[Handle]interface{}),
		ids:     make(map[interface{}]Handle),
	}, nil
}

// Vulkan implements Driver on top of the Vulkan API. Handles given out are
// keys into an internal table, so they stay valid only for this driver.
type Vulkan struct {
	mu      sync.Mutex
	next    Handle
	objects map[Handle]interface{}
	ids     map[interface{}]Handle
}

var _ Driver = (*Vulkan)(nil)

func (v *Vulkan) put(obj interface{}) Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id, ok := v.ids[obj]; ok {
		return id
	}
	v.next++
	v.objects[v.next] = obj
	v.ids[obj] = v.next
	return v.next
}

func (v *Vulkan) get(id Handle) interface{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.objects[id]
}

func (v *Vulkan) drop(id Handle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if obj, ok := v.objects[id]; ok {
		delete(v.ids, obj)
		delete(v.objects, id)
	}
}

func (v *Vulkan) vkInstance(id Instance) vk.Instance {
	obj, _ := v.get(Handle(id)).(vk.Instance)
	return obj
}

func (v *Vulkan) vkPhysicalDevice(id PhysicalDevice) vk.PhysicalDevice {
	obj, _ := v.get(Handle(id)).(vk.PhysicalDevice)
	return obj
}

func (v *Vulkan) vkDevice(id Device) vk.Device {
	obj, _ := v.get(Handle(id)).(vk.Device)
	return obj
}

func (v *Vulkan) vkQueue(id Queue) vk.Queue {
	obj, _ := v.get(Handle(id)).(vk.Queue)
	return obj
}

func (v *Vulkan) vkCommandPool(id CommandPool) vk.CommandPool {
	obj, _ := v.get(Handle(id)).(vk.CommandPool)
	return obj
}

func (v *Vulkan) vkCommandBuffer(id CommandBuffer) vk.CommandBuffer {
	obj, _ := v.get(Handle(id)).(vk.CommandBuffer)
	return obj
}

func (v *Vulkan) vkSurface(id Surface) vk.Surface {
	obj, ok := v.get(Handle(id)).(vk.Surface)
	if !ok {
		return vk.NullSurface
	}
	return obj
}

func (v *Vulkan) vkSwapchain(id Swapchain) vk.Swapchain {
	obj, _ := v.get(Handle(id)).(vk.Swapchain)
	return obj
}

func (v *Vulkan) vkImage(id Image) vk.Image {
	obj, _ := v.get(Handle(id)).(vk.Image)
	return obj
}

func (v *Vulkan) vkImageView(id ImageView) vk.ImageView {
	obj, _ := v.get(Handle(id)).(vk.ImageView)
	return obj
}

func (v *Vulkan) vkRenderPass(id RenderPass) vk.RenderPass {
	obj, _ := v.get(Handle(id)).(vk.RenderPass)
	return obj
}

func (v *Vulkan) vkFramebuffer(id Framebuffer) vk.Framebuffer {
	obj, _ := v.get(Handle(id)).(vk.Framebuffer)
	return obj
}

func (v *Vulkan) vkSemaphore(id Semaphore) vk.Semaphore {
	obj, _ := v.get(Handle(id)).(vk.Semaphore)
	return obj
}

// RawInstance returns the native instance behind id, for windowing
// libraries that create surfaces themselves.
func (v *Vulkan) RawInstance(id Instance) interface{} {
	return v.vkInstance(id)
}

// ImportSurface takes ownership of a native surface created by the
// windowing layer and returns its handle.
func (v *Vulkan) ImportSurface(surface unsafe.Pointer) Surface {
	return Surface(v.put(vk.SurfaceFromPointer(uintptr(surface))))
}

func check(call string, result vk.Result) error {
	if err := vk.Error(result); err != nil {
		return &ResultError{Call: call, Code: int32(result), Reason: err.Error()}
	}
	return nil
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

// CreateInstance implements Driver.
func (v *Vulkan) CreateInstance(info InstanceInfo) (Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(info.Application.ApplicationName),
		ApplicationVersion: info.Application.ApplicationVersion,
		PEngineName:        safeString(info.Application.EngineName),
		EngineVersion:      info.Application.EngineVersion,
		ApiVersion:         info.Application.APIVersion,
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	if err := check("vkCreateInstance", vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return 0, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return 0, errors.Wrap(err, "vk.InitInstance()")
	}
	return Instance(v.put(instance)), nil
}

// DestroyInstance implements Driver.
func (v *Vulkan) DestroyInstance(instance Instance) {
	vk.DestroyInstance(v.vkInstance(instance), nil)
	v.drop(Handle(instance))
}

// EnumeratePhysicalDevices implements Driver.
func (v *Vulkan) EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error) {
	vkInstance := v.vkInstance(instance)

	var deviceCount uint32
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(vkInstance, &deviceCount, nil)); err != nil {
		return nil, err
	}
	if deviceCount == 0 {
		return nil, nil
	}

	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(vkInstance, &deviceCount, availableDevices)); err != nil {
		return nil, err
	}

	devices := make([]PhysicalDevice, 0, deviceCount)
	for _, pd := range availableDevices[:deviceCount] {
		devices = append(devices, PhysicalDevice(v.put(pd)))
	}
	return devices, nil
}

// QueueFamilies implements Driver.
func (v *Vulkan) QueueFamilies(pd PhysicalDevice) []QueueFamily {
	vkpd := v.vkPhysicalDevice(pd)

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(vkpd, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil
	}
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(vkpd, &queueFamilyCount, queueFamilies)

	families := make([]QueueFamily, queueFamilyCount)
	for i := range families {
		queueFamilies[i].Deref()
		flags := queueFamilies[i].QueueFlags
		if flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families[i].Flags |= QueueGraphics
		}
		if flags&vk.QueueFlags(vk.QueueComputeBit) != 0 {
			families[i].Flags |= QueueCompute
		}
		if flags&vk.QueueFlags(vk.QueueTransferBit) != 0 {
			families[i].Flags |= QueueTransfer
		}
		if flags&vk.QueueFlags(vk.QueueSparseBindingBit) != 0 {
			families[i].Flags |= QueueSparseBinding
		}
		families[i].QueueCount = queueFamilies[i].QueueCount
	}
	return families
}

// Properties implements Driver.
func (v *Vulkan) Properties(pd PhysicalDevice) Properties {
	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(v.vkPhysicalDevice(pd), &physicalDeviceProperties)
	physicalDeviceProperties.Deref()

	props := Properties{
		ID:            physicalDeviceProperties.DeviceID,
		VendorID:      physicalDeviceProperties.VendorID,
		DriverVersion: physicalDeviceProperties.DriverVersion,
		Name:          vk.ToString(physicalDeviceProperties.DeviceName[:]),
	}
	switch physicalDeviceProperties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		props.Type = TypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		props.Type = TypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		props.Type = TypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		props.Type = TypeCPU
	default:
		props.Type = TypeOther
	}
	return props
}

// MemoryHeaps implements Driver.
func (v *Vulkan) MemoryHeaps(pd PhysicalDevice) []MemoryHeap {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(v.vkPhysicalDevice(pd), &memoryProperties)
	memoryProperties.Deref()

	heaps := make([]MemoryHeap, 0, memoryProperties.MemoryHeapCount)
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		heap := memoryProperties.MemoryHeaps[iMem]
		heaps = append(heaps, MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}
	return heaps
}

// SurfaceSupport implements Driver.
func (v *Vulkan) SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error) {
	var supported vk.Bool32
	if err := check("vkGetPhysicalDeviceSurfaceSupportKHR",
		vk.GetPhysicalDeviceSurfaceSupport(v.vkPhysicalDevice(pd), family, v.vkSurface(surface), &supported)); err != nil {
		return false, err
	}
	return supported.B(), nil
}

// SurfaceFormats implements Driver.
func (v *Vulkan) SurfaceFormats(pd PhysicalDevice, surface Surface) ([]SurfaceFormat, error) {
	vkpd, vks := v.vkPhysicalDevice(pd), v.vkSurface(surface)

	var surfaceFormatCount uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(vkpd, vks, &surfaceFormatCount, nil)); err != nil {
		return nil, err
	}
	if surfaceFormatCount == 0 {
		return nil, nil
	}

	surfaceFormats := make([]vk.SurfaceFormat, surfaceFormatCount)
	if err := check("vkGetPhysicalDeviceSurfaceFormatsKHR",
		vk.GetPhysicalDeviceSurfaceFormats(vkpd, vks, &surfaceFormatCount, surfaceFormats)); err != nil {
		return nil, err
	}

	formats := make([]SurfaceFormat, surfaceFormatCount)
	for i := range formats {
		surfaceFormats[i].Deref()
		formats[i] = SurfaceFormat{
			Format:     Format(surfaceFormats[i].Format),
			ColorSpace: ColorSpace(surfaceFormats[i].ColorSpace),
		}
	}
	return formats, nil
}

// SurfaceCapabilities implements Driver.
func (v *Vulkan) SurfaceCapabilities(pd PhysicalDevice, surface Surface) (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR",
		vk.GetPhysicalDeviceSurfaceCapabilities(v.vkPhysicalDevice(pd), v.vkSurface(surface), &caps)); err != nil {
		return SurfaceCapabilities{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	return SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		MinImageExtent:          Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxImageExtent:          Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
		SupportedTransforms:     SurfaceTransform(caps.SupportedTransforms),
		CurrentTransform:        SurfaceTransform(caps.CurrentTransform),
		SupportedCompositeAlpha: CompositeAlpha(caps.SupportedCompositeAlpha),
	}, nil
}

// DestroySurface implements Driver.
func (v *Vulkan) DestroySurface(instance Instance, surface Surface) {
	vk.DestroySurface(v.vkInstance(instance), v.vkSurface(surface), nil)
	v.drop(Handle(surface))
}

// CreateDevice implements Driver.
func (v *Vulkan) CreateDevice(pd PhysicalDevice, info DeviceInfo) (Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.FamilyIndex,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
	}

	var vkDevice vk.Device
	if err := check("vkCreateDevice", vk.CreateDevice(v.vkPhysicalDevice(pd), &dci, nil, &vkDevice)); err != nil {
		return 0, err
	}
	return Device(v.put(vkDevice)), nil
}

// DestroyDevice implements Driver.
func (v *Vulkan) DestroyDevice(dev Device) {
	vk.DestroyDevice(v.vkDevice(dev), nil)
	v.drop(Handle(dev))
}

// DeviceWaitIdle implements Driver.
func (v *Vulkan) DeviceWaitIdle(dev Device) error {
	return check("vkDeviceWaitIdle", vk.DeviceWaitIdle(v.vkDevice(dev)))
}

// GetQueue implements Driver.
func (v *Vulkan) GetQueue(dev Device, family, index uint32) Queue {
	var deviceQueue vk.Queue
	vk.GetDeviceQueue(v.vkDevice(dev), family, index, &deviceQueue)
	return Queue(v.put(deviceQueue))
}

// CreateCommandPool implements Driver.
func (v *Vulkan) CreateCommandPool(dev Device, family uint32) (CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var commandPool vk.CommandPool
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(v.vkDevice(dev), &cpci, nil, &commandPool)); err != nil {
		return 0, err
	}
	return CommandPool(v.put(commandPool)), nil
}

// DestroyCommandPool implements Driver.
func (v *Vulkan) DestroyCommandPool(dev Device, pool CommandPool) {
	vk.DestroyCommandPool(v.vkDevice(dev), v.vkCommandPool(pool), nil)
	v.drop(Handle(pool))
}

// AllocateCommandBuffer implements Driver.
func (v *Vulkan) AllocateCommandBuffer(dev Device, pool CommandPool) (CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        v.vkCommandPool(pool),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(v.vkDevice(dev), &cbai, commandBuffers)); err != nil {
		return 0, err
	}
	return CommandBuffer(v.put(commandBuffers[0])), nil
}

// FreeCommandBuffer implements Driver.
func (v *Vulkan) FreeCommandBuffer(dev Device, pool CommandPool, cmd CommandBuffer) {
	vk.FreeCommandBuffers(v.vkDevice(dev), v.vkCommandPool(pool), 1, []vk.CommandBuffer{v.vkCommandBuffer(cmd)})
	v.drop(Handle(cmd))
}

// CreateSwapchain implements Driver.
func (v *Vulkan) CreateSwapchain(dev Device, info SwapchainInfo) (Swapchain, error) {
	clipped := vk.Bool32(vk.False)
	if info.Clipped {
		clipped = vk.Bool32(vk.True)
	}

	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         v.vkSurface(info.Surface),
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.Format.Format),
		ImageColorSpace: vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
		},
		ImageArrayLayers: info.ArrayLayers,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          clipped,
		OldSwapchain:     v.vkSwapchain(info.OldSwapchain),
	}

	var swapchain vk.Swapchain
	if err := check("vkCreateSwapchainKHR", vk.CreateSwapchain(v.vkDevice(dev), &scci, nil, &swapchain)); err != nil {
		return 0, err
	}
	return Swapchain(v.put(swapchain)), nil
}

// DestroySwapchain implements Driver.
func (v *Vulkan) DestroySwapchain(dev Device, swapchain Swapchain) {
	vk.DestroySwapchain(v.vkDevice(dev), v.vkSwapchain(swapchain), nil)
	v.drop(Handle(swapchain))
}

// SwapchainImages implements Driver. Images are owned by the swapchain.
func (v *Vulkan) SwapchainImages(dev Device, swapchain Swapchain) ([]Image, error) {
	vkDevice, vkSwapchain := v.vkDevice(dev), v.vkSwapchain(swapchain)

	var numImages uint32
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(vkDevice, vkSwapchain, &numImages, nil)); err != nil {
		return nil, err
	}

	swapchainImages := make([]vk.Image, numImages)
	if err := check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(vkDevice, vkSwapchain, &numImages, swapchainImages)); err != nil {
		return nil, err
	}

	images := make([]Image, 0, numImages)
	for _, img := range swapchainImages[:numImages] {
		images = append(images, Image(v.put(img)))
	}
	return images, nil
}

// CreateImageView implements Driver.
func (v *Vulkan) CreateImageView(dev Device, image Image, format Format) (ImageView, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    v.vkImage(image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorSubresourceRange(),
	}

	var imageView vk.ImageView
	if err := check("vkCreateImageView", vk.CreateImageView(v.vkDevice(dev), &ivci, nil, &imageView)); err != nil {
		return 0, err
	}
	return ImageView(v.put(imageView)), nil
}

// DestroyImageView implements Driver.
func (v *Vulkan) DestroyImageView(dev Device, view ImageView) {
	vk.DestroyImageView(v.vkDevice(dev), v.vkImageView(view), nil)
	v.drop(Handle(view))
}

// CreateRenderPass implements Driver. The pass has a single color
// attachment that is cleared on load and kept in attachment layout.
func (v *Vulkan) CreateRenderPass(dev Device, format Format) (RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutColorAttachmentOptimal,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}

	var renderPass vk.RenderPass
	if err := check("vkCreateRenderPass", vk.CreateRenderPass(v.vkDevice(dev), &rpci, nil, &renderPass)); err != nil {
		return 0, err
	}
	return RenderPass(v.put(renderPass)), nil
}

// DestroyRenderPass implements Driver.
func (v *Vulkan) DestroyRenderPass(dev Device, pass RenderPass) {
	vk.DestroyRenderPass(v.vkDevice(dev), v.vkRenderPass(pass), nil)
	v.drop(Handle(pass))
}

// CreateFramebuffer implements Driver.
func (v *Vulkan) CreateFramebuffer(dev Device, pass RenderPass, view ImageView, extent Extent2D) (Framebuffer, error) {
	fbci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      v.vkRenderPass(pass),
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{v.vkImageView(view)},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if err := check("vkCreateFramebuffer", vk.CreateFramebuffer(v.vkDevice(dev), &fbci, nil, &framebuffer)); err != nil {
		return 0, err
	}
	return Framebuffer(v.put(framebuffer)), nil
}

// DestroyFramebuffer implements Driver.
func (v *Vulkan) DestroyFramebuffer(dev Device, fb Framebuffer) {
	vk.DestroyFramebuffer(v.vkDevice(dev), v.vkFramebuffer(fb), nil)
	v.drop(Handle(fb))
}

// CreateSemaphore implements Driver.
func (v *Vulkan) CreateSemaphore(dev Device) (Semaphore, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(v.vkDevice(dev), &sci, nil, &semaphore)); err != nil {
		return 0, err
	}
	return Semaphore(v.put(semaphore)), nil
}

// DestroySemaphore implements Driver.
func (v *Vulkan) DestroySemaphore(dev Device, sem Semaphore) {
	vk.DestroySemaphore(v.vkDevice(dev), v.vkSemaphore(sem), nil)
	v.drop(Handle(sem))
}

// AcquireNextImage implements Driver.
func (v *Vulkan) AcquireNextImage(dev Device, swapchain Swapchain, timeout uint64, sem Semaphore) (uint32, error) {
	var imageIndex uint32
	if err := check("vkAcquireNextImageKHR",
		vk.AcquireNextImage(v.vkDevice(dev), v.vkSwapchain(swapchain), nativeTimeout(timeout), v.vkSemaphore(sem), vk.NullFence, &imageIndex)); err != nil {
		return 0, err
	}
	return imageIndex, nil
}

// nativeTimeout converts a timeout in nanoseconds to the binding's uint,
// saturating where uint is 32 bits wide.
func nativeTimeout(timeout uint64) uint {
	if timeout > uint64(^uint(0)) {
		return ^uint(0)
	}
	return uint(timeout)
}

// BeginCommandBuffer implements Driver.
func (v *Vulkan) BeginCommandBuffer(cmd CommandBuffer) error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return check("vkBeginCommandBuffer", vk.BeginCommandBuffer(v.vkCommandBuffer(cmd), &cbbi))
}

// CmdImageBarrier implements Driver.
func (v *Vulkan) CmdImageBarrier(cmd CommandBuffer, image Image, from, to ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           vk.ImageLayout(from),
		NewLayout:           vk.ImageLayout(to),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               v.vkImage(image),
		SubresourceRange:    colorSubresourceRange(),
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch to {
	case ImageLayoutColorAttachmentOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	default:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}

	vk.CmdPipelineBarrier(v.vkCommandBuffer(cmd), srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// CmdBeginRenderPass implements Driver.
func (v *Vulkan) CmdBeginRenderPass(cmd CommandBuffer, begin RenderPassBegin) {
	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  v.vkRenderPass(begin.RenderPass),
		Framebuffer: v.vkFramebuffer(begin.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: begin.Extent.Width, Height: begin.Extent.Height},
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(begin.ClearColor[:])},
	}
	vk.CmdBeginRenderPass(v.vkCommandBuffer(cmd), &rpbi, vk.SubpassContentsInline)
}

// CmdEndRenderPass implements Driver.
func (v *Vulkan) CmdEndRenderPass(cmd CommandBuffer) {
	vk.CmdEndRenderPass(v.vkCommandBuffer(cmd))
}

// EndCommandBuffer implements Driver.
func (v *Vulkan) EndCommandBuffer(cmd CommandBuffer) error {
	return check("vkEndCommandBuffer", vk.EndCommandBuffer(v.vkCommandBuffer(cmd)))
}

// QueueSubmit implements Driver.
func (v *Vulkan) QueueSubmit(queue Queue, cmd CommandBuffer, wait Semaphore) error {
	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{v.vkSemaphore(wait)},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.vkCommandBuffer(cmd)},
	}}
	return check("vkQueueSubmit", vk.QueueSubmit(v.vkQueue(queue), 1, submit, vk.NullFence))
}

// QueuePresent implements Driver.
func (v *Vulkan) QueuePresent(queue Queue, swapchain Swapchain, imageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{v.vkSwapchain(swapchain)},
		PImageIndices:  []uint32{imageIndex},
	}
	return check("vkQueuePresentKHR", vk.QueuePresent(v.vkQueue(queue), &presentInfo))
}

// QueueWaitIdle implements Driver.
func (v *Vulkan) QueueWaitIdle(queue Queue) error {
	return check("vkQueueWaitIdle", vk.QueueWaitIdle(v.vkQueue(queue)))
}

func colorSubresourceRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}
