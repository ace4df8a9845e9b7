// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/succotash/device"
)

// FamilyReport describes one queue family of a probed device.
type FamilyReport struct {
	Graphics      bool
	Compute       bool
	Transfer      bool
	SparseBinding bool
	QueueCount    uint32
}

// DeviceReport summarises a physical device as the selector sees it.
type DeviceReport struct {
	Name          string
	VendorID      uint32
	DeviceID      uint32
	DriverVersion uint32
	Type          string
	Memory        uint64
	Families      []FamilyReport

	// Suitable is set when a family satisfies the requirements.
	Suitable bool
	Family   uint32
	Discrete bool
	// Selected marks the device SelectDevice would choose.
	Selected bool
}

// Probe creates a throwaway instance and reports every physical device
// it exposes. Present support is not checked since no surface exists.
func Probe(drv device.Driver, extensions []string, req Requirements) ([]DeviceReport, error) {
	instance, err := drv.CreateInstance(device.InstanceInfo{
		Application: ApplicationInfo,
		Extensions:  extensions,
	})
	if err != nil {
		return nil, driverError("create instance", err)
	}
	defer drv.DestroyInstance(instance)

	pds, err := drv.EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, driverError("enumerate physical devices", err)
	}
	if len(pds) == 0 {
		return nil, ErrNoDevicesFound
	}

	candidates := make([]Candidate, 0, len(pds))
	reports := make([]DeviceReport, 0, len(pds))
	for _, pd := range pds {
		cand, err := candidate(drv, pd, 0, req)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)

		props := drv.Properties(pd)
		report := DeviceReport{
			Name:          props.Name,
			VendorID:      props.VendorID,
			DeviceID:      props.ID,
			DriverVersion: props.DriverVersion,
			Type:          props.Type.String(),
			Memory:        cand.Memory,
			Discrete:      cand.Rank().Discrete,
		}
		for _, f := range cand.Families {
			report.Families = append(report.Families, FamilyReport{
				Graphics:      f.Flags&device.QueueGraphics != 0,
				Compute:       f.Flags&device.QueueCompute != 0,
				Transfer:      f.Flags&device.QueueTransfer != 0,
				SparseBinding: f.Flags&device.QueueSparseBinding != 0,
				QueueCount:    f.QueueCount,
			})
		}
		report.Family, report.Suitable = FindQueueFamily(cand.Families, req, nil)
		reports = append(reports, report)
	}

	if selection, err := SelectDevice(candidates, req); err == nil {
		for i := range reports {
			reports[i].Selected = candidates[i].Device == selection.Device
		}
	}
	return reports, nil
}
