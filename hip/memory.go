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
	"encoding/binary"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// DevicePtr is an address in device memory, as returned by Malloc. The zero value is the null pointer.
//
// It is not managed by Go: it must be released with Free.
type DevicePtr uintptr

// IsNil returns whether the pointer is null.
func (p DevicePtr) IsNil() bool {
	return p == 0
}

// Offset returns the pointer moved by the given number of bytes.
func (p DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr(uintptr(int(p) + bytes))
}

// String implements fmt.Stringer.
func (p DevicePtr) String() string {
	return fmt.Sprintf("DevicePtr(0x%x)", uintptr(p))
}

// HostMemory is a host buffer used as source or destination of copies.
type HostMemory []byte

// Memory is either host memory (HostMemory or *HostBuffer) or device memory (DevicePtr).
// It is used by the copy functions that accept both kinds, with an explicit MemcpyKind.
type Memory interface {
	// address returns the address of the memory, pinning it with pinner if it is Go memory.
	address(pinner *runtime.Pinner) C.uintptr_t

	// hostSize returns the size of host memory, or -1 for device memory, whose size is not known.
	hostSize() int
}

func (p DevicePtr) address(*runtime.Pinner) C.uintptr_t { return C.uintptr_t(p) }
func (p DevicePtr) hostSize() int                       { return -1 }

func (h HostMemory) address(pinner *runtime.Pinner) C.uintptr_t {
	if len(h) == 0 {
		return 0
	}
	data := unsafe.SliceData(h)
	pinner.Pin(data)
	return C.uintptr_t(uintptr(unsafe.Pointer(data)))
}

func (h HostMemory) hostSize() int { return len(h) }

// MemcpyKind is the direction of a copy.
type MemcpyKind int32

const (
	MemcpyHostToHost     MemcpyKind = 0
	MemcpyHostToDevice   MemcpyKind = 1
	MemcpyDeviceToHost   MemcpyKind = 2
	MemcpyDeviceToDevice MemcpyKind = 3

	// MemcpyDefault lets the runtime infer the direction from the pointers. It requires unified addressing.
	MemcpyDefault MemcpyKind = 4
)

var memcpyKindNames = map[MemcpyKind]string{
	MemcpyHostToHost:     "HostToHost",
	MemcpyHostToDevice:   "HostToDevice",
	MemcpyDeviceToHost:   "DeviceToHost",
	MemcpyDeviceToDevice: "DeviceToDevice",
	MemcpyDefault:        "Default",
}

// String implements fmt.Stringer.
func (k MemcpyKind) String() string {
	if name, found := memcpyKindNames[k]; found {
		return name
	}
	return fmt.Sprintf("MemcpyKind(%d)", int32(k))
}

// Malloc allocates size bytes of device memory on the current device.
func Malloc(size int) (DevicePtr, error) {
	if size < 0 {
		return 0, errors.Errorf("hip.Malloc(%d): negative size", size)
	}
	fn, err := entryPoint("hipMalloc")
	if err != nil {
		return 0, err
	}
	var ptr C.uintptr_t
	if err := toError("hipMalloc", C.call_hipMalloc(fn, &ptr, C.size_t(size))); err != nil {
		return 0, err
	}
	return DevicePtr(ptr), nil
}

// Free releases device memory allocated with Malloc or MallocPitch.
// Freeing the null pointer is a no-op by the runtime.
func (p DevicePtr) Free() error {
	fn, err := entryPoint("hipFree")
	if err != nil {
		return err
	}
	return toError("hipFree", C.call_hipFree(fn, C.uintptr_t(p)))
}

// MallocPitch allocates a 2D region of height rows of width bytes each. It returns the pointer and the
// pitch: the distance in bytes between rows, which may be larger than width.
func MallocPitch(width, height int) (ptr DevicePtr, pitch int, err error) {
	if width < 0 || height < 0 {
		return 0, 0, errors.Errorf("hip.MallocPitch(%d, %d): negative dimension", width, height)
	}
	fn, err := entryPoint("hipMallocPitch")
	if err != nil {
		return 0, 0, err
	}
	var cPtr C.uintptr_t
	var cPitch C.size_t
	err = toError("hipMallocPitch", C.call_hipMallocPitch(fn, &cPtr, &cPitch, C.size_t(width), C.size_t(height)))
	if err != nil {
		return 0, 0, err
	}
	return DevicePtr(cPtr), int(cPitch), nil
}

// Memset sets count bytes of device memory to value.
func Memset(dst DevicePtr, value byte, count int) error {
	if count < 0 {
		return errors.Errorf("hip.Memset: negative count %d", count)
	}
	fn, err := entryPoint("hipMemset")
	if err != nil {
		return err
	}
	return toError("hipMemset", C.call_hipMemset(fn, C.uintptr_t(dst), C.int(value), C.size_t(count)))
}

// MemsetAsync queues on stream the setting of count bytes of device memory to value.
func MemsetAsync(dst DevicePtr, value byte, count int, stream Stream) error {
	if count < 0 {
		return errors.Errorf("hip.MemsetAsync: negative count %d", count)
	}
	fn, err := entryPoint("hipMemsetAsync")
	if err != nil {
		return err
	}
	return toError("hipMemsetAsync",
		C.call_hipMemsetAsync(fn, C.uintptr_t(dst), C.int(value), C.size_t(count), C.uintptr_t(stream)))
}

// checkCopySize verifies that host memory involved in a copy holds at least count bytes.
func checkCopySize(op string, count int, memories ...Memory) error {
	if count < 0 {
		return errors.Errorf("%s: negative count %d", op, count)
	}
	for _, m := range memories {
		if size := m.hostSize(); size >= 0 && size < count {
			return errors.Errorf("%s: host buffer has %d bytes, but %d bytes are to be copied", op, size, count)
		}
	}
	return nil
}

// Memcpy copies count bytes from src to dst, in the direction given by kind. It blocks until the copy is done.
//
// Host buffers (HostMemory) must have at least count bytes, or an error is returned without calling the runtime.
func Memcpy(dst, src Memory, count int, kind MemcpyKind) error {
	if err := checkCopySize("hip.Memcpy", count, dst, src); err != nil {
		return err
	}
	fn, err := entryPoint("hipMemcpy")
	if err != nil {
		return err
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	return toError("hipMemcpy",
		C.call_hipMemcpy(fn, dst.address(&pinner), src.address(&pinner), C.size_t(count), C.int(kind)))
}

// MemcpyAsync queues on stream the copy of count bytes from src to dst, in the direction given by kind.
//
// The runtime accesses host memory after the call returns, so host operands must be page-locked *HostBuffer
// (see HostMalloc): Go memory (HostMemory) is rejected with an error. Host buffers must not be modified (or, for
// the destination, read) until the stream is synchronized.
func MemcpyAsync(dst, src Memory, count int, kind MemcpyKind, stream Stream) error {
	for _, m := range []Memory{dst, src} {
		if _, isGoMemory := m.(HostMemory); isGoMemory {
			return errors.New("hip.MemcpyAsync: Go memory (HostMemory) can't be used in asynchronous copies, " +
				"use a HostBuffer (see HostMalloc)")
		}
	}
	if err := checkCopySize("hip.MemcpyAsync", count, dst, src); err != nil {
		return err
	}
	fn, err := entryPoint("hipMemcpyAsync")
	if err != nil {
		return err
	}
	return toError("hipMemcpyAsync", C.call_hipMemcpyAsync(fn, dst.address(nil), src.address(nil),
		C.size_t(count), C.int(kind), C.uintptr_t(stream)))
}

// MemcpyHtoD copies all of src (host) to dst (device).
func MemcpyHtoD(dst DevicePtr, src []byte) error {
	return Memcpy(dst, HostMemory(src), len(src), MemcpyHostToDevice)
}

// MemcpyDtoH copies len(dst) bytes from src (device) to dst (host).
func MemcpyDtoH(dst []byte, src DevicePtr) error {
	return Memcpy(HostMemory(dst), src, len(dst), MemcpyDeviceToHost)
}

// MemcpyDtoD copies count bytes between two device buffers.
func MemcpyDtoD(dst, src DevicePtr, count int) error {
	return Memcpy(dst, src, count, MemcpyDeviceToDevice)
}

// MemcpyHtoDAsync queues on stream the copy of all of src (page-locked host memory) to dst (device).
func MemcpyHtoDAsync(dst DevicePtr, src *HostBuffer, stream Stream) error {
	return MemcpyAsync(dst, src, src.Size(), MemcpyHostToDevice, stream)
}

// MemcpyDtoHAsync queues on stream the copy of dst.Size() bytes from src (device) to dst (page-locked host memory).
func MemcpyDtoHAsync(dst *HostBuffer, src DevicePtr, stream Stream) error {
	return MemcpyAsync(dst, src, dst.Size(), MemcpyDeviceToHost, stream)
}

// MemGetInfo returns the free and total memory of the current device, in bytes.
func MemGetInfo() (free, total uint64, err error) {
	fn, err := entryPoint("hipMemGetInfo")
	if err != nil {
		return 0, 0, err
	}
	var freeBytes, totalBytes C.size_t
	if err = toError("hipMemGetInfo", C.call_hipMemGetInfo(fn, &freeBytes, &totalBytes)); err != nil {
		return 0, 0, err
	}
	return uint64(freeBytes), uint64(totalBytes), nil
}

// MemoryType of a pointer, as reported by PointerGetAttributes.
type MemoryType int32

const (
	MemoryTypeUnregistered MemoryType = 0
	MemoryTypeHost         MemoryType = 1
	MemoryTypeDevice       MemoryType = 2
	MemoryTypeArray        MemoryType = 3
	MemoryTypeUnified      MemoryType = 4
)

// String implements fmt.Stringer.
func (t MemoryType) String() string {
	switch t {
	case MemoryTypeUnregistered:
		return "Unregistered"
	case MemoryTypeHost:
		return "Host"
	case MemoryTypeDevice:
		return "Device"
	case MemoryTypeArray:
		return "Array"
	case MemoryTypeUnified:
		return "Unified"
	}
	return fmt.Sprintf("MemoryType(%d)", int32(t))
}

// PointerAttributes describes a pointer known to the runtime.
type PointerAttributes struct {
	MemoryType    MemoryType
	Device        Device
	DevicePointer DevicePtr
	HostPointer   uintptr
	IsManaged     bool
}

// pointerAttributesBufferSize is the zeroed buffer given to the runtime to fill the pointer attributes.
const pointerAttributesBufferSize = 64

// decodePointerAttributes decodes the native hipPointerAttributes_t record.
func decodePointerAttributes(record []byte) *PointerAttributes {
	return &PointerAttributes{
		MemoryType:    MemoryType(int32(binary.NativeEndian.Uint32(record[0:]))),
		Device:        Device(int32(binary.NativeEndian.Uint32(record[4:]))),
		DevicePointer: DevicePtr(binary.NativeEndian.Uint64(record[8:])),
		HostPointer:   uintptr(binary.NativeEndian.Uint64(record[16:])),
		IsManaged:     binary.NativeEndian.Uint32(record[24:]) != 0,
	}
}

// PointerGetAttributes returns the attributes of the memory pointed by m.
func PointerGetAttributes(m Memory) (*PointerAttributes, error) {
	fn, err := entryPoint("hipPointerGetAttributes")
	if err != nil {
		return nil, err
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	record := make([]byte, pointerAttributesBufferSize)
	err = toError("hipPointerGetAttributes",
		C.call_hipPointerGetAttributes(fn, unsafe.Pointer(&record[0]), m.address(&pinner)))
	if err != nil {
		return nil, err
	}
	return decodePointerAttributes(record), nil
}
