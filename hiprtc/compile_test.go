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

package hiprtc

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/kernelcache"
	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestArchOption(t *testing.T) {
	require.Equal(t, []string{"--offload-arch=gfx90a:sramecc+:xnack-"}, ArchOption(hip.PlatformAMD, "gfx90a:sramecc+:xnack-"))
	require.Nil(t, ArchOption(hip.PlatformAMD, ""))
	require.Nil(t, ArchOption(hip.PlatformNVIDIA, "gfx90a"))

	c := NewCompilation("").WithOptions("-O3").WithArch("gfx1100")
	require.Equal(t, []string{"-O3", "--offload-arch=gfx1100"}, c.allOptions(hip.PlatformAMD))
	require.Equal(t, []string{"-O3"}, c.allOptions(hip.PlatformNVIDIA))
	require.Equal(t, []string{"-O3"}, NewCompilation("").WithOptions("-O3").allOptions(hip.PlatformAMD))
}

func TestCompilationKey(t *testing.T) {
	c := NewCompilation("src").WithName("k.hip").WithHeader("a.h", "A").WithNameExpressions("&k").WithArch("gfx90a")
	key := c.cacheKey(c.allOptions(hip.PlatformAMD), hip.PlatformAMD, "6.2")
	require.Equal(t, "src", key.Source)
	require.Equal(t, "k.hip", key.Name)
	require.Equal(t, []kernelcache.Header{{Name: "a.h", Source: "A"}}, key.Headers)
	require.Equal(t, []string{"&k"}, key.NameExpressions)
	require.Equal(t, []string{"--offload-arch=gfx90a"}, key.Options)
	require.Equal(t, "gfx90a", key.Arch)
	require.Equal(t, hip.PlatformAMD, key.Platform)
	require.Equal(t, "6.2", key.CompilerVersion)

	// Upgrading the compiler, or switching platform, invalidates cached code objects.
	require.NotEqual(t, key.Digest(), c.cacheKey(key.Options, hip.PlatformAMD, "6.3").Digest())
	require.NotEqual(t, key.Digest(), c.cacheKey(key.Options, hip.PlatformNVIDIA, "6.2").Digest())
	require.Equal(t, DefaultProgramName, NewCompilation("").name)
}

const globalKernelSource = `
__device__ int myGlobalVar;

extern "C" __global__ void kernel(int *a) {
	*a = myGlobalVar;
}
`

// TestCompileLoadAndLaunch compiles a kernel, sets one of its globals, launches it and reads back its output.
func TestCompileLoadAndLaunch(t *testing.T) {
	requireCompiler(t)
	arch := capture(DeviceArch(hip.Device(*flagDevice))).Test(t)
	compiled := capture(NewCompilation(globalKernelSource).WithName("global.hip").WithArch(arch).Done()).Test(t)
	require.NotEmpty(t, compiled.Code)
	require.False(t, compiled.FromCache)

	module := capture(hip.LoadModule(compiled.Code)).Test(t)
	defer func() { require.NoError(t, module.Unload()) }()

	globalPtr, size, err := module.Global("myGlobalVar")
	require.NoError(t, err)
	require.Equal(t, 4, size)
	require.NoError(t, hip.CopyToDevice(globalPtr, []int32{10}))

	kernel := capture(module.Function("kernel")).Test(t)
	out := capture(hip.MallocFor[int32](1)).Test(t)
	defer func() { require.NoError(t, out.Free()) }()
	require.NoError(t, hip.Memset(out, 0, 4))

	config := hip.LaunchConfig{Grid: hip.D1(1), Block: hip.D1(1)}
	require.NoError(t, hip.LaunchKernel(kernel, config, hip.NewKernelArgs().Pointer(out).Bytes()))
	require.NoError(t, hip.DeviceSynchronize())
	got := make([]int32, 1)
	require.NoError(t, hip.CopyFromDevice(got, out))
	require.Equal(t, int32(10), got[0])

	// Unknown kernel names are reported as not found.
	_, err = module.Function("no_such_kernel")
	require.ErrorIs(t, err, hip.ErrorNotFound)
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))
}

const scaleKernelSource = `
#include "scale.h"

template <typename T>
__global__ void scale(T *x, T factor, int n) {
	int i = blockIdx.x * blockDim.x + threadIdx.x;
	if (i < n) x[i] = OP(x[i], factor);
}
`

// TestCompileTemplateOnStream uses name expressions, headers, a stream and the kernel cache.
func TestCompileTemplateOnStream(t *testing.T) {
	requireCompiler(t)
	arch := capture(DeviceArch(hip.Device(*flagDevice))).Test(t)
	cache := capture(kernelcache.New(filepath.Join(t.TempDir(), "kernels"))).Test(t)
	newCompilation := func() *Compilation {
		return NewCompilation(scaleKernelSource).
			WithName("scale.hip").
			WithHeader("scale.h", "#define OP(a, b) ((a) * (b))").
			WithNameExpressions("&scale<float>").
			WithOptions("-O3").
			WithArch(arch).
			WithCache(cache)
	}
	compiled := capture(newCompilation().Done()).Test(t)
	require.False(t, compiled.FromCache)
	lowered := compiled.LoweredNames["&scale<float>"]
	require.NotEmpty(t, lowered)

	cached := capture(newCompilation().Done()).Test(t)
	require.True(t, cached.FromCache)
	require.Equal(t, compiled.Code, cached.Code)
	require.Equal(t, compiled.LoweredNames, cached.LoweredNames)

	module := capture(hip.LoadModule(cached.Code)).Test(t)
	defer func() { require.NoError(t, module.Unload()) }()
	kernel := capture(module.Function(lowered)).Test(t)

	const n = 1000
	values := make([]float32, n)
	for ii := range values {
		values[ii] = float32(ii)
	}
	x := capture(hip.MallocFor[float32](n)).Test(t)
	defer func() { require.NoError(t, x.Free()) }()
	stream := capture(hip.CreateStream()).Test(t)
	defer func() { require.NoError(t, stream.Destroy()) }()

	require.NoError(t, hip.CopyToDevice(x, values))
	args := hip.NewKernelArgs().Pointer(x).Float32(0.5).Int32(n)
	config := hip.LaunchConfig{Grid: hip.D1((n + 255) / 256), Block: hip.D1(256), Stream: stream}
	require.NoError(t, kernel.Launch(config, args.Bytes()))
	require.NoError(t, stream.Synchronize())
	done := capture(stream.Query()).Test(t)
	require.True(t, done)

	got := make([]float32, n)
	require.NoError(t, hip.CopyFromDevice(got, x))
	for ii := range got {
		require.Equalf(t, float32(ii)*0.5, got[ii], "x[%d]", ii)
	}
}

func TestCompilationFailure(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("hiprtc not available: %v", err)
	}
	c := NewCompilation(`extern "C" __global__ void broken(int *a) { *a = undefined_symbol; }`).WithName("broken.hip")
	_, err := c.Done()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrorCompilation)
	var rtcErr *Error
	require.True(t, errors.As(err, &rtcErr))
	require.Contains(t, rtcErr.Log, "undefined_symbol")
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))
	fmt.Printf("expected compilation error: %v\n", err)

	// A Compilation can only be used once.
	_, err = c.Done()
	require.ErrorContains(t, err, "more than once")
}
