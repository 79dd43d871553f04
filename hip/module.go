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

// Module is a code object (e.g. compiled with hiprtc) loaded into the current device.
type Module uintptr

// Function is a kernel entry point of a Module, used with LaunchKernel.
type Function uintptr

// String implements fmt.Stringer.
func (m Module) String() string {
	return fmt.Sprintf("Module(0x%x)", uintptr(m))
}

// String implements fmt.Stringer.
func (f Function) String() string {
	return fmt.Sprintf("Function(0x%x)", uintptr(f))
}

// LoadModule loads a compiled code object into the current device. It must be released with Unload.
//
// The image is copied by the runtime, so it can be discarded after the call.
func LoadModule(image []byte) (Module, error) {
	if len(image) == 0 {
		return 0, errors.New("hip.LoadModule() requires a non-empty code object")
	}
	fn, err := entryPoint("hipModuleLoadData")
	if err != nil {
		return 0, err
	}
	var handle C.uintptr_t
	if err := toError("hipModuleLoadData", C.call_hipModuleLoadData(fn, &handle, unsafe.Pointer(&image[0]))); err != nil {
		return 0, err
	}
	return Module(handle), nil
}

// Function returns the kernel with the given name. Kernels not declared `extern "C"` must be looked up by
// their lowered (mangled) name, see hiprtc.
//
// A missing name returns an error wrapping ErrorNotFound.
func (m Module) Function(name string) (Function, error) {
	fn, err := entryPoint("hipModuleGetFunction")
	if err != nil {
		return 0, err
	}
	cName := C.CString(name)
	defer cFree(cName)
	var handle C.uintptr_t
	if err := toError("hipModuleGetFunction", C.call_hipModuleGetFunction(fn, &handle, C.uintptr_t(m), cName)); err != nil {
		return 0, errors.WithMessagef(err, "kernel %q", name)
	}
	return Function(handle), nil
}

// Global returns the device address and the size in bytes of a global variable of the module.
func (m Module) Global(name string) (ptr DevicePtr, size int, err error) {
	fn, err := entryPoint("hipModuleGetGlobal")
	if err != nil {
		return 0, 0, err
	}
	cName := C.CString(name)
	defer cFree(cName)
	var cPtr C.uintptr_t
	var cSize C.size_t
	err = toError("hipModuleGetGlobal", C.call_hipModuleGetGlobal(fn, &cPtr, &cSize, C.uintptr_t(m), cName))
	if err != nil {
		return 0, 0, errors.WithMessagef(err, "global %q", name)
	}
	return DevicePtr(cPtr), int(cSize), nil
}

// Unload the module, and set it to the null handle: its functions and globals become invalid.
// Unloading it again returns an error wrapping ErrorInvalidHandle.
func (m *Module) Unload() error {
	return destroyHandle("hipModuleUnload", (*uintptr)(m))
}
