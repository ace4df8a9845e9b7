// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window is the SDL windowing layer. It contributes the instance
// extensions a window needs and creates the surface the core presents to.
package window

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/succotash/core"
	"github.com/devblok/succotash/device"
)

// Init starts SDL and loads the Vulkan loader it exposes.
func Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	return nil
}

// Quit undoes Init.
func Quit() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

// ProcAddr returns vkGetInstanceProcAddr from the loader SDL opened.
func ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// SurfaceImporter is a driver that can adopt a surface created by SDL.
type SurfaceImporter interface {
	RawInstance(instance device.Instance) interface{}
	ImportSurface(surface unsafe.Pointer) device.Surface
}

// Window is an SDL window able to present through Vulkan.
type Window struct {
	window  *sdl.Window
	onClose []func()
	closed  bool
}

// New opens a window of the given size.
func New(title string, width, height uint16) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &Window{window: w}, nil
}

// Extensions lists the instance extensions the window needs.
func (w *Window) Extensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// Size returns the drawable size in pixels.
func (w *Window) Size() (uint16, uint16) {
	return drawableSize(w.window.VulkanGetDrawableSize())
}

// drawableSize narrows an SDL drawable size to 16 bits per side, clamping
// and reporting sides that do not fit.
func drawableSize(width, height int32) (uint16, uint16) {
	return side("width", width), side("height", height)
}

func side(axis string, v int32) uint16 {
	switch {
	case v < 0:
		log.WithFields(log.Fields{"axis": axis, "size": v}).Warn("negative drawable size")
		return 0
	case v > math.MaxUint16:
		log.WithFields(log.Fields{"axis": axis, "size": v}).Warn("drawable size clamped to 16 bits")
		return math.MaxUint16
	}
	return uint16(v)
}

// Bind creates the instance of ctx with the window's extensions, then
// creates a surface and hands it to ctx. Closing the window frees ctx.
func (w *Window) Bind(ctx *core.Context, drv SurfaceImporter) error {
	ctx.ProvideExtensions(w.Extensions()...)
	if err := ctx.CreateInstance(); err != nil {
		return err
	}

	instance, err := ctx.Instance()
	if err != nil {
		return err
	}
	raw, err := w.window.VulkanCreateSurface(drv.RawInstance(instance))
	if err != nil {
		return errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}

	width, height := w.Size()
	if err := ctx.ProvideSurface(drv.ImportSurface(raw), width, height); err != nil {
		return err
	}

	w.OnClose(func() {
		ctx.Free(true)
	})
	return nil
}

// OnClose registers f to run when the window is closed.
func (w *Window) OnClose(f func()) {
	w.onClose = append(w.onClose, f)
}

// Poll drains pending events. It returns false once the window was closed
// by the user or with the escape key.
func (w *Window) Poll() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				w.Close()
			}
		case *sdl.QuitEvent:
			w.Close()
		}
	}
	return !w.closed
}

// Close runs the close callbacks once, latest registered first.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	for i := len(w.onClose) - 1; i >= 0; i-- {
		w.onClose[i]()
	}
}

// Destroy closes the window and releases it.
func (w *Window) Destroy() {
	w.Close()
	w.window.Destroy()
}
