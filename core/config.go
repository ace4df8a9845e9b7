// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// DefaultSwapchainSize is the image count requested before clamping.
const DefaultSwapchainSize = 3

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event polling interval in milliseconds
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	SwapchainSize uint32

	// InstanceExtensions are enabled in addition to the ones
	// the windowing layer contributes
	InstanceExtensions []string

	ScreenWidth  uint16
	ScreenHeight uint16

	ClearColor mgl32.Vec4
}

// Settings is the source of startup parameters, looked up by section and key.
type Settings interface {
	Read(section, key string) (string, bool)
	Int(section, key string, def int) int
	Float(section, key string, def float64) float64
	Strings(section, key string) []string
}

// DefaultConfiguration returns the configuration used when nothing is supplied.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
		Renderer: RendererConfiguration{
			SwapchainSize: DefaultSwapchainSize,
			ScreenWidth:   800,
			ScreenHeight:  600,
			ClearColor:    mgl32.Vec4{0.1, 0.1, 0.1, 1},
		},
	}
}

// Apply overrides c with any value present in s.
func (c *Configuration) Apply(s Settings) {
	c.Time.FramesPerSecond = s.Int("TIME", "FPS", c.Time.FramesPerSecond)
	c.Time.EventPollDelay = s.Int("TIME", "EVENT_POLL_DELAY", c.Time.EventPollDelay)

	c.Renderer.SwapchainSize = uint32(bounded(s, "RENDERER", "SWAPCHAIN_SIZE", int64(c.Renderer.SwapchainSize), 1, math.MaxUint32))
	c.Renderer.ScreenWidth = uint16(bounded(s, "RENDERER", "SCREEN_WIDTH", int64(c.Renderer.ScreenWidth), 1, math.MaxUint16))
	c.Renderer.ScreenHeight = uint16(bounded(s, "RENDERER", "SCREEN_HEIGHT", int64(c.Renderer.ScreenHeight), 1, math.MaxUint16))
	if exts := s.Strings("RENDERER", "INSTANCE_EXTENSIONS"); len(exts) > 0 {
		c.Renderer.InstanceExtensions = exts
	}

	c.Renderer.ClearColor = mgl32.Vec4{
		float32(s.Float("RENDERER", "CLEAR_R", float64(c.Renderer.ClearColor.X()))),
		float32(s.Float("RENDERER", "CLEAR_G", float64(c.Renderer.ClearColor.Y()))),
		float32(s.Float("RENDERER", "CLEAR_B", float64(c.Renderer.ClearColor.Z()))),
		float32(s.Float("RENDERER", "CLEAR_A", float64(c.Renderer.ClearColor.W()))),
	}
}

// bounded reads section/key as an integer in [min, max]. A value out of
// range is reported and def is kept.
func bounded(s Settings, section, key string, def, min, max int64) int64 {
	v := int64(s.Int(section, key, int(def)))
	if v < min || v > max {
		log.WithFields(log.Fields{
			"key":   section + "_" + key,
			"value": v,
			"min":   min,
			"max":   max,
		}).Warn("setting out of range, using default")
		return def
	}
	return v
}
