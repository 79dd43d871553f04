/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package hip

/*
#include "hip_calls.h"
*/
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
)

// Device is the ordinal of a GPU, from 0 to DeviceCount()-1.
type Device int

// String implements fmt.Stringer.
func (d Device) String() string {
	return fmt.Sprintf("Device(%d)", int(d))
}

// DeviceAttribute identifies an integer property of the device, see Device.Attribute.
type DeviceAttribute int32

const (
	DeviceAttributeComputeCapabilityMajor DeviceAttribute = 23
	DeviceAttributeComputeCapabilityMinor DeviceAttribute = 61
)

// Limit identifies a device limit that can be set with DeviceSetLimit.
type Limit int32

const (
	LimitStackSize      Limit = 0
	LimitPrintfFifoSize Limit = 1
	LimitMallocHeapSize Limit = 2
)

// Init initializes the runtime. flags must be 0.
//
// Calling it is optional: the runtime initializes itself on the first call.
func Init(flags uint32) error {
	fn, err := entryPoint("hipInit")
	if err != nil {
		return err
	}
	return toError("hipInit", C.call_hipInit(fn, C.uint(flags)))
}

// DeviceCount returns the number of devices available.
func DeviceCount() (int, error) {
	fn, err := entryPoint("hipGetDeviceCount")
	if err != nil {
		return 0, err
	}
	var count C.int
	if err := toError("hipGetDeviceCount", C.call_hipGetDeviceCount(fn, &count)); err != nil {
		return 0, err
	}
	return int(count), nil
}

// SetDevice sets the current device for the calling OS thread.
func SetDevice(device Device) error {
	fn, err := entryPoint("hipSetDevice")
	if err != nil {
		return err
	}
	return toError("hipSetDevice", C.call_hipSetDevice(fn, C.int(device)))
}

// CurrentDevice returns the current device of the calling OS thread.
func CurrentDevice() (Device, error) {
	fn, err := entryPoint("hipGetDevice")
	if err != nil {
		return 0, err
	}
	var device C.int
	if err := toError("hipGetDevice", C.call_hipGetDevice(fn, &device)); err != nil {
		return 0, err
	}
	return Device(device), nil
}

// Attribute queries an integer attribute of the device.
func (d Device) Attribute(attr DeviceAttribute) (int, error) {
	fn, err := entryPoint("hipDeviceGetAttribute")
	if err != nil {
		return 0, err
	}
	var value C.int
	if err := toError("hipDeviceGetAttribute", C.call_hipDeviceGetAttribute(fn, &value, C.int(attr), C.int(d))); err != nil {
		return 0, err
	}
	return int(value), nil
}

// ComputeCapability returns the major and minor compute capability of the device.
func (d Device) ComputeCapability() (major, minor int, err error) {
	major, err = d.Attribute(DeviceAttributeComputeCapabilityMajor)
	if err != nil {
		return
	}
	minor, err = d.Attribute(DeviceAttributeComputeCapabilityMinor)
	return
}

// Properties returns the full set of properties of the device.
func (d Device) Properties() (*DeviceProperties, error) {
	fn, err := entryPoint("hipGetDeviceProperties")
	if err != nil {
		return nil, err
	}
	// The runtime writes a hipDeviceProp_t, which is smaller than the buffer: the extra room accommodates
	// runtime versions that append fields.
	record := make([]byte, devicePropertiesBufferSize)
	err = toError("hipGetDeviceProperties", C.call_hipGetDeviceProperties(fn, unsafe.Pointer(&record[0]), C.int(d)))
	if err != nil {
		return nil, err
	}
	props, err := DecodeDeviceProperties(record)
	if err != nil {
		return nil, errors.WithMessagef(err, "decoding properties of %s", d)
	}
	return props, nil
}

// DeviceSetLimit sets a limit of the current device, e.g. LimitMallocHeapSize.
func DeviceSetLimit(limit Limit, value uint64) error {
	fn, err := entryPoint("hipDeviceSetLimit")
	if err != nil {
		return err
	}
	return toError("hipDeviceSetLimit", C.call_hipDeviceSetLimit(fn, C.int(limit), C.size_t(value)))
}

// DeviceSynchronize blocks until all work queued on the current device is finished.
func DeviceSynchronize() error {
	fn, err := entryPoint("hipDeviceSynchronize")
	if err != nil {
		return err
	}
	return toError("hipDeviceSynchronize", C.call_hipDeviceSynchronize(fn))
}

// DriverVersion returns the version of the installed driver.
func DriverVersion() (int, error) {
	return queryVersion("hipDriverGetVersion")
}

// RuntimeVersion returns the version of the HIP runtime.
func RuntimeVersion() (int, error) {
	return queryVersion("hipRuntimeGetVersion")
}

func queryVersion(op string) (int, error) {
	fn, err := entryPoint(op)
	if err != nil {
		return 0, err
	}
	var version C.int
	if err := toError(op, C.call_hipVersion(fn, &version)); err != nil {
		return 0, err
	}
	return int(version), nil
}
