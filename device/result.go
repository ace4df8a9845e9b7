// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Result codes shared by every driver. Values match the Vulkan enumeration.
const (
	Success                   int32 = 0
	ErrorOutOfHostMemory      int32 = -1
	ErrorOutOfDeviceMemory    int32 = -2
	ErrorInitializationFailed int32 = -3
	ErrorDeviceLost           int32 = -4
	ErrorLayerNotPresent      int32 = -6
	ErrorExtensionNotPresent  int32 = -7
	ErrorIncompatibleDriver   int32 = -9
	ErrorSurfaceLost          int32 = -1000000000
	ErrorOutOfDate            int32 = -1000001004
)

var resultNames = map[int32]string{
	Success:                   "VK_SUCCESS",
	ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
}

// ResultName returns the symbolic name of a result code.
func ResultName(code int32) string {
	if name, ok := resultNames[code]; ok {
		return name
	}
	return fmt.Sprintf("VK_RESULT_%d", code)
}

// ResultError is a non-success result returned by a driver call.
type ResultError struct {
	// Call is the driver entry point that failed, e.g. "vkCreateDevice".
	Call   string
	Code   int32
	Reason string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s(): %s (%d)", e.Call, e.Reason, e.Code)
}

// NewResultError builds a ResultError using the symbolic name as reason.
func NewResultError(call string, code int32) error {
	return &ResultError{Call: call, Code: code, Reason: ResultName(code)}
}

// Code extracts the driver result code carried by err. The second return
// value is false when err carries no driver result.
func Code(err error) (int32, bool) {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}

// Reason extracts the human readable driver reason carried by err.
func Reason(err error) string {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Reason
	}
	return err.Error()
}
