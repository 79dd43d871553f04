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
)

// Dim3 is the size of a grid (in blocks) or of a block (in threads).
// Zero dimensions are taken as 1.
type Dim3 struct {
	X, Y, Z uint32
}

// D1 returns a one-dimensional Dim3.
func D1(x uint32) Dim3 {
	return Dim3{X: x, Y: 1, Z: 1}
}

// normalized replaces zero dimensions by 1.
func (d Dim3) normalized() Dim3 {
	for _, v := range []*uint32{&d.X, &d.Y, &d.Z} {
		if *v == 0 {
			*v = 1
		}
	}
	return d
}

// String implements fmt.Stringer.
func (d Dim3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", d.X, d.Y, d.Z)
}

// LaunchConfig configures a kernel launch.
type LaunchConfig struct {
	Grid, Block Dim3

	// SharedMemBytes is the dynamic shared memory per block.
	SharedMemBytes uint32

	// Stream where the kernel is queued. The zero value is the default stream.
	Stream Stream
}

// launchExtra returns the "extra" launch parameter list: the address of the packed arguments, the address of
// their size and the platform terminator.
func launchExtra(argsAddr, sizeAddr, end uintptr) [5]uintptr {
	return [5]uintptr{launchParamBufferPointer, argsAddr, launchParamBufferSize, sizeAddr, end}
}

// LaunchKernel queues the kernel fn on config.Stream. It returns once queued: use Stream.Synchronize
// (or an Event) to wait for completion.
//
// args is the packed argument buffer, laid out exactly as the kernel parameters would be in a C struct:
// see KernelArgs and StructArgs. It is copied, so it can be reused right after the call.
func LaunchKernel(fn Function, config LaunchConfig, args []byte) error {
	lib, err := getLibrary()
	if err != nil {
		return err
	}
	launchFn, err := lib.entryPoint("hipModuleLaunchKernel")
	if err != nil {
		return err
	}
	grid, block := config.Grid.normalized(), config.Block.normalized()

	// The runtime reads the arguments through the extra list: all of it is kept in C memory during the call.
	var extra *C.uintptr_t
	if len(args) > 0 {
		cArgs := C.CBytes(args)
		defer C.free(cArgs)
		cSize := cMallocArrayAndSet[C.size_t](1, func(int) C.size_t { return C.size_t(len(args)) })
		defer cFree(cSize)
		list := launchExtra(uintptr(cArgs), uintptr(unsafe.Pointer(cSize)), lib.launchEnd)
		extra = cMallocArrayAndSet[C.uintptr_t](len(list), func(ii int) C.uintptr_t { return C.uintptr_t(list[ii]) })
		defer cFree(extra)
	}
	return toError("hipModuleLaunchKernel", C.call_hipModuleLaunchKernel(launchFn, C.uintptr_t(fn),
		C.uint(grid.X), C.uint(grid.Y), C.uint(grid.Z),
		C.uint(block.X), C.uint(block.Y), C.uint(block.Z),
		C.uint(config.SharedMemBytes), C.uintptr_t(config.Stream), extra))
}

// Launch is a shortcut to LaunchKernel(f, config, args).
func (f Function) Launch(config LaunchConfig, args []byte) error {
	return LaunchKernel(f, config, args)
}
