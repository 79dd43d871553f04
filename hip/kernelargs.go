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

import (
	"encoding/binary"
	"math"
	"slices"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// KernelArgs packs kernel arguments into the buffer given to LaunchKernel, following the C layout rules:
// each value is aligned to its own size, and the total is padded to the largest alignment.
//
// Example, for a kernel `saxpy(float a, const float *x, float *y, int n)`:
//
//	args := hip.NewKernelArgs().Float32(2).Pointer(x).Pointer(y).Int32(n)
//	err := hip.LaunchKernel(fn, config, args.Bytes())
type KernelArgs struct {
	buf      []byte
	maxAlign int
}

// NewKernelArgs returns an empty argument packer.
func NewKernelArgs() *KernelArgs {
	return &KernelArgs{maxAlign: 1}
}

func (a *KernelArgs) alignTo(alignment int) {
	a.maxAlign = max(a.maxAlign, alignment)
	for len(a.buf)%alignment != 0 {
		a.buf = append(a.buf, 0)
	}
}

func (a *KernelArgs) append32(v uint32) *KernelArgs {
	a.alignTo(4)
	a.buf = binary.NativeEndian.AppendUint32(a.buf, v)
	return a
}

func (a *KernelArgs) append64(v uint64) *KernelArgs {
	a.alignTo(8)
	a.buf = binary.NativeEndian.AppendUint64(a.buf, v)
	return a
}

// Pointer appends a device pointer.
func (a *KernelArgs) Pointer(p DevicePtr) *KernelArgs { return a.append64(uint64(p)) }

// Int32 appends an int.
func (a *KernelArgs) Int32(v int32) *KernelArgs { return a.append32(uint32(v)) }

// Uint32 appends an unsigned int.
func (a *KernelArgs) Uint32(v uint32) *KernelArgs { return a.append32(v) }

// Int64 appends a long long.
func (a *KernelArgs) Int64(v int64) *KernelArgs { return a.append64(uint64(v)) }

// Uint64 appends an unsigned long long.
func (a *KernelArgs) Uint64(v uint64) *KernelArgs { return a.append64(v) }

// Size appends a size_t.
func (a *KernelArgs) Size(v uint64) *KernelArgs { return a.append64(v) }

// Float16 appends a half.
func (a *KernelArgs) Float16(v float16.Float16) *KernelArgs {
	a.alignTo(2)
	a.buf = binary.NativeEndian.AppendUint16(a.buf, v.Bits())
	return a
}

// Float32 appends a float.
func (a *KernelArgs) Float32(v float32) *KernelArgs { return a.append32(math.Float32bits(v)) }

// Float64 appends a double.
func (a *KernelArgs) Float64(v float64) *KernelArgs { return a.append64(math.Float64bits(v)) }

// Bytes returns the packed arguments, padded to the largest alignment.
func (a *KernelArgs) Bytes() []byte {
	packed := slices.Clone(a.buf)
	for len(packed)%a.maxAlign != 0 {
		packed = append(packed, 0)
	}
	return packed
}

// Len returns the size in bytes of the packed arguments, including the final padding.
func (a *KernelArgs) Len() int {
	return (len(a.buf) + a.maxAlign - 1) / a.maxAlign * a.maxAlign
}

// PackArgs packs the values with a KernelArgs. Accepted types are DevicePtr, int32, uint32, int64, uint64,
// float16.Float16, float32 and float64: Go int and uint are rejected, since their C counterpart is ambiguous.
func PackArgs(values ...any) ([]byte, error) {
	args := NewKernelArgs()
	for ii, value := range values {
		switch v := value.(type) {
		case DevicePtr:
			args.Pointer(v)
		case int32:
			args.Int32(v)
		case uint32:
			args.Uint32(v)
		case int64:
			args.Int64(v)
		case uint64:
			args.Uint64(v)
		case float16.Float16:
			args.Float16(v)
		case float32:
			args.Float32(v)
		case float64:
			args.Float64(v)
		default:
			return nil, errors.Errorf("hip.PackArgs(): argument #%d has unsupported type %T", ii, value)
		}
	}
	return args.Bytes(), nil
}

// StructArgs returns a copy of the bytes of the Go struct pointed by v, to be used as the kernel arguments.
//
// The struct fields must match the kernel parameters in order and type, and must not contain Go pointers:
// device pointers are given as DevicePtr.
func StructArgs[T any](v *T) []byte {
	return slices.Clone(unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v)))
}
