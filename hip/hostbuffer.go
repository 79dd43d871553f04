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
	"runtime"
	"unsafe"

	"github.com/gomlx/gohip/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// HostMallocFlags configure the page-locked host memory allocated with HostMalloc.
type HostMallocFlags uint32

const (
	HostMallocDefault       HostMallocFlags = 0
	HostMallocPortable      HostMallocFlags = 1
	HostMallocMapped        HostMallocFlags = 2
	HostMallocWriteCombined HostMallocFlags = 4
)

// HostBuffer is page-locked (pinned) host memory, allocated by the runtime with HostMalloc.
//
// Copies from/to page-locked memory are faster, and only with them async copies overlap with other work.
// It implements Memory, so it can be used with Memcpy and MemcpyAsync.
//
// It must be released with Free: a HostBuffer garbage collected without being freed is reported in the logs,
// but not freed, since the memory may still be in use by the device.
type HostBuffer struct {
	wrapper *hostBufferWrapper
}

type hostBufferWrapper struct {
	data  unsafe.Pointer
	size  int
	stack []byte
}

// HostMalloc allocates size bytes of page-locked host memory.
//
// If withStack is set, the stack of where it was allocated is kept, and reported if the buffer is garbage
// collected without being freed.
func HostMalloc(size int, flags HostMallocFlags, withStack bool) (*HostBuffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("hip.HostMalloc(%d): size must be positive", size)
	}
	fn, err := entryPoint("hipHostMalloc")
	if err != nil {
		return nil, err
	}
	var data unsafe.Pointer
	if err := toError("hipHostMalloc", C.call_hipHostMalloc(fn, &data, C.size_t(size), C.uint(flags))); err != nil {
		return nil, err
	}
	b := &HostBuffer{&hostBufferWrapper{data: data, size: size}}
	if withStack {
		buf := make([]byte, 10*1024)
		n := runtime.Stack(buf, false)
		b.wrapper.stack = buf[:n]
	}
	runtime.AddCleanup(b, func(wrapper *hostBufferWrapper) {
		if wrapper.data == nil {
			return // Correctly freed.
		}
		if wrapper.stack == nil {
			klog.Errorf("hip.HostBuffer of %d bytes garbage collected without being freed", wrapper.size)
		} else {
			klog.Errorf("hip.HostBuffer of %d bytes garbage collected without being freed. Stack:\n%s\n",
				wrapper.size, wrapper.stack)
		}
	}, b.wrapper)
	return b, nil
}

// Size of the buffer in bytes. It is 0 after the buffer is freed.
func (b *HostBuffer) Size() int {
	return b.wrapper.size
}

// Bytes returns a view of the buffer. It becomes invalid once the buffer is freed.
func (b *HostBuffer) Bytes() []byte {
	if b.wrapper.data == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.wrapper.data), b.wrapper.size)
}

// Free the buffer. Freeing an already freed buffer is a no-op.
func (b *HostBuffer) Free() error {
	w := b.wrapper
	if w.data == nil {
		return nil
	}
	fn, err := entryPoint("hipHostFree")
	if err != nil {
		return err
	}
	if err := toError("hipHostFree", C.call_hipHostFree(fn, w.data)); err != nil {
		return err
	}
	w.data = nil
	w.size = 0
	return nil
}

func (b *HostBuffer) address(*runtime.Pinner) C.uintptr_t {
	return C.uintptr_t(uintptr(b.wrapper.data))
}

func (b *HostBuffer) hostSize() int {
	return b.wrapper.size
}

// HostMallocFor allocates page-locked host memory for n values of type T, and returns it along with a
// typed view of it.
func HostMallocFor[T dtypes.Supported](n int, flags HostMallocFlags) (*HostBuffer, []T, error) {
	b, err := HostMalloc(n*dtypes.FromGenericsType[T]().Size(), flags, false)
	if err != nil {
		return nil, nil, err
	}
	return b, unsafe.Slice((*T)(b.wrapper.data), n), nil
}
