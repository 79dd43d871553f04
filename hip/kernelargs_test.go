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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestKernelArgs(t *testing.T) {
	// Same layout as a C struct { void *a; int x, y; size_t n; }.
	args := NewKernelArgs().Pointer(0x1000).Int32(2).Int32(3).Size(50)
	require.Equal(t, 24, args.Len())
	type params struct {
		A    DevicePtr
		X, Y int32
		N    uint64
	}
	require.Equal(t, StructArgs(&params{A: 0x1000, X: 2, Y: 3, N: 50}), args.Bytes())

	// Padding between fields: struct { int x; void *a; }.
	args = NewKernelArgs().Int32(-1).Pointer(0x2000)
	packed := args.Bytes()
	require.Len(t, packed, 16)
	require.Equal(t, []byte{0, 0, 0, 0}, packed[4:8])
	type params2 struct {
		X int32
		A DevicePtr
	}
	require.Equal(t, StructArgs(&params2{X: -1, A: 0x2000}), packed)

	// Final padding: struct { float f; half h; }.
	args = NewKernelArgs().Float32(1).Float16(float16.Fromfloat32(2))
	require.Equal(t, 8, args.Len())
	require.Len(t, args.Bytes(), 8)

	// Empty.
	require.Empty(t, NewKernelArgs().Bytes())
	require.Equal(t, 0, NewKernelArgs().Len())

	// Bytes returns a copy.
	args = NewKernelArgs().Uint32(7)
	b := args.Bytes()
	b[0] = 0
	require.Equal(t, byte(7), args.Bytes()[0])
}

func TestPackArgs(t *testing.T) {
	packed, err := PackArgs(float32(2), DevicePtr(0x1000), DevicePtr(0x2000), int32(10))
	require.NoError(t, err)
	require.Equal(t, NewKernelArgs().Float32(2).Pointer(0x1000).Pointer(0x2000).Int32(10).Bytes(), packed)
	require.Len(t, packed, 32)

	// int64 @0, uint64 @8, uint32 @16, float64 @24 (after padding), half @32, padded to 40.
	packed, err = PackArgs(int64(-1), uint64(1), uint32(3), float64(0.5), float16.Fromfloat32(1))
	require.NoError(t, err)
	require.Len(t, packed, 40)

	_, err = PackArgs(int32(1), 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "argument #1")
}

func TestLaunchExtra(t *testing.T) {
	extra := launchExtra(0xA000, 0xB000, launchParamEnd(PlatformAMD))
	require.Equal(t, [5]uintptr{1, 0xA000, 2, 0xB000, 3}, extra)
	extra = launchExtra(0xA000, 0xB000, launchParamEnd(PlatformNVIDIA))
	require.Equal(t, [5]uintptr{1, 0xA000, 2, 0xB000, 0}, extra)
}

func TestDim3(t *testing.T) {
	require.Equal(t, Dim3{X: 32, Y: 1, Z: 1}, Dim3{X: 32}.normalized())
	require.Equal(t, Dim3{1, 1, 1}, Dim3{}.normalized())
	require.Equal(t, Dim3{X: 4, Y: 2, Z: 1}, Dim3{4, 2, 0}.normalized())
	require.Equal(t, D1(128), Dim3{128, 1, 1})
	require.Equal(t, "(128, 1, 1)", D1(128).String())
}
