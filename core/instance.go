// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/succotash/device"
	log "github.com/sirupsen/logrus"
)

// MakeVersion packs an API version number.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// ApplicationInfo identifies the engine to the driver.
var ApplicationInfo = device.ApplicationInfo{
	ApplicationName:    "Succotash Demo",
	ApplicationVersion: MakeVersion(0, 1, 0),
	EngineName:         "Succotash",
	EngineVersion:      MakeVersion(0, 1, 0),
	APIVersion:         MakeVersion(1, 0, 0),
}

// CreateInstance creates the instance, selects a physical device and
// builds the logical device with its command pool and command buffer.
// Anything left from a previous call is released first.
func (c *Context) CreateInstance() error {
	if c.drv == nil {
		return c.notReady("CreateInstance")
	}
	if c.instanceScope.len() > 0 || c.logicalScope.len() > 0 {
		c.releaseInstance()
	}

	err := c.runStages("create instance", []stage{
		{"create instance", c.createInstance},
		{"enumerate physical devices", c.enumeratePhysicalDevices},
		{"select device", c.selectDevice},
		{"create logical context", c.createLogicalContext},
	})
	if err != nil {
		return err
	}

	c.instanceReady = true
	return nil
}

func (c *Context) createInstance() error {
	extensions := c.extensions.Names()
	instance, err := c.drv.CreateInstance(device.InstanceInfo{
		Application: ApplicationInfo,
		Extensions:  extensions,
	})
	if err != nil {
		return driverError("create instance", err)
	}

	c.instance = instance
	c.instanceScope.push(func() {
		c.drv.DestroyInstance(instance)
	})
	c.logger().WithField("extensions", extensions).Debug("instance created")
	return nil
}

func (c *Context) enumeratePhysicalDevices() error {
	pds, err := c.drv.EnumeratePhysicalDevices(c.instance)
	if err != nil {
		return driverError("enumerate physical devices", err)
	}
	if len(pds) == 0 {
		return ErrNoDevicesFound
	}

	c.physicalDevices = pds
	c.logger().WithFields(log.Fields{"count": len(pds)}).Debug("physical devices enumerated")
	return nil
}
