// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
)

type stage struct {
	name string
	run  func() error
}

// runStages runs stages in order and stops at the first failure. The
// failure is wrapped with the stage name and logged once.
func (c *Context) runStages(sequence string, stages []stage) error {
	for _, s := range stages {
		c.logger().WithField("stage", s.name).Debug("running stage")
		if err := s.run(); err != nil {
			err = errors.Wrapf(err, "%s", s.name)
			c.logger().WithField("sequence", sequence).WithError(err).Error("stage failed")
			return err
		}
	}
	return nil
}
