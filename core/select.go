// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/succotash/device"
	log "github.com/sirupsen/logrus"
)

// Requirements are the queue capabilities the selected family must have.
type Requirements struct {
	Graphics bool
	Compute  bool
	Present  bool
}

// Candidate is a physical device considered during selection.
type Candidate struct {
	Device   device.PhysicalDevice
	Name     string
	Type     device.Type
	Families []device.QueueFamily
	// Present holds per family present support. Nil means no surface
	// was bound when the candidate was built.
	Present []bool
	Memory  uint64
}

// Rank orders candidates. A discrete device outranks any other device,
// memory decides between devices of the same class.
type Rank struct {
	Discrete bool
	Memory   uint64
}

// Outranks reports whether r is strictly better than other.
func (r Rank) Outranks(other Rank) bool {
	if r.Discrete != other.Discrete {
		return r.Discrete
	}
	return r.Memory > other.Memory
}

// Rank computes the ranking key of the candidate.
func (c Candidate) Rank() Rank {
	return Rank{
		Discrete: c.Type == device.TypeDiscreteGPU,
		Memory:   c.Memory,
	}
}

// Selection is the outcome of device selection.
type Selection struct {
	Device device.PhysicalDevice
	Name   string
	Family uint32
	// QueueCount is what the family advertises, not what gets requested.
	QueueCount uint32
	Rank       Rank
}

// FindQueueFamily returns the index of the first family satisfying every
// required capability. When present support is unknown (nil) the present
// requirement is left for later verification.
func FindQueueFamily(families []device.QueueFamily, req Requirements, present []bool) (uint32, bool) {
	for i, family := range families {
		if req.Graphics && family.Flags&device.QueueGraphics == 0 {
			continue
		}
		if req.Compute && family.Flags&device.QueueCompute == 0 {
			continue
		}
		if req.Present && present != nil && (i >= len(present) || !present[i]) {
			continue
		}
		return uint32(i), true
	}
	return 0, false
}

// SelectDevice folds over candidates in order and returns the best one.
// Ties keep the first seen candidate.
func SelectDevice(candidates []Candidate, req Requirements) (Selection, error) {
	var (
		best  Selection
		found bool
	)
	for _, c := range candidates {
		if len(c.Families) == 0 {
			continue
		}
		family, ok := FindQueueFamily(c.Families, req, c.Present)
		if !ok {
			continue
		}
		rank := c.Rank()
		if found && !rank.Outranks(best.Rank) {
			continue
		}
		best = Selection{
			Device:     c.Device,
			Name:       c.Name,
			Family:     family,
			QueueCount: c.Families[family].QueueCount,
			Rank:       rank,
		}
		found = true
	}
	if !found {
		return Selection{}, ErrNoSuitableDevice
	}
	return best, nil
}

// candidate gathers everything selection needs to know about pd.
func candidate(drv device.Driver, pd device.PhysicalDevice, surface device.Surface, req Requirements) (Candidate, error) {
	props := drv.Properties(pd)
	c := Candidate{
		Device:   pd,
		Name:     props.Name,
		Type:     props.Type,
		Families: drv.QueueFamilies(pd),
	}

	for _, heap := range drv.MemoryHeaps(pd) {
		c.Memory += heap.Size
	}

	if req.Present && surface != 0 {
		c.Present = make([]bool, len(c.Families))
		for i := range c.Families {
			supported, err := drv.SurfaceSupport(pd, uint32(i), surface)
			if err != nil {
				return Candidate{}, driverError("query surface support", err)
			}
			c.Present[i] = supported
		}
	}
	return c, nil
}

// selectDevice runs before any surface is bound, so a present
// requirement is settled later by verifyPresentSupport.
func (c *Context) selectDevice() error {
	selection, err := c.rankDevices(0)
	if err != nil {
		return err
	}

	c.selection = selection
	c.logger().WithFields(log.Fields{
		"device":     selection.Name,
		"family":     selection.Family,
		"discrete":   selection.Rank.Discrete,
		"memory":     selection.Rank.Memory,
		"queueCount": selection.QueueCount,
	}).Info("selected physical device")
	return nil
}

// rankDevices selects among the enumerated devices. With a surface given,
// families that cannot present to it are skipped when present is required.
func (c *Context) rankDevices(surface device.Surface) (Selection, error) {
	candidates := make([]Candidate, 0, len(c.physicalDevices))
	for _, pd := range c.physicalDevices {
		cand, err := candidate(c.drv, pd, surface, c.requires)
		if err != nil {
			return Selection{}, err
		}
		candidates = append(candidates, cand)
	}
	return SelectDevice(candidates, c.requires)
}
