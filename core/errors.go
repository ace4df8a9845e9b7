// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/devblok/succotash/device"
)

// Policy failures reported by the bootstrap pipeline.
var (
	ErrNoDevicesFound     = errors.New("no physical devices found")
	ErrNoSuitableDevice   = errors.New("no suitable physical device")
	ErrNoSurfaceFormats   = errors.New("surface reports no formats")
	ErrExtentOverflow     = errors.New("surface extent exceeds 16-bit range")
	ErrPresentUnsupported = errors.New("selected queue family cannot present to surface")
)

// ErrNotReady is returned when an operation is called before the
// operation it depends on has succeeded.
var ErrNotReady = errors.New("context not ready")

// DriverError is a non-success driver result raised by a pipeline step.
type DriverError struct {
	Op     string
	Code   int32
	Reason string
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("failed to %s. Error(%d): %q", e.Op, e.Code, e.Reason)
}

// driverError converts a driver failure into a *DriverError for op.
// Errors without a driver result code pass through with op as context.
func driverError(op string, err error) error {
	if err == nil {
		return nil
	}
	code, ok := device.Code(err)
	if !ok {
		return errors.Wrapf(err, "failed to %s", op)
	}
	return &DriverError{Op: op, Code: code, Reason: device.Reason(err)}
}
