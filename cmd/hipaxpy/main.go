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

// hipaxpy compiles a SAXPY kernel (y = a*x + y) at runtime with hiprtc, runs it on a HIP device and verifies
// the result on the host.
//
// Compiled kernels are stored in the kernel cache (see package kernelcache), so only the first run compiles.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/hiprtc"
	"github.com/gomlx/gohip/kernelcache"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagN         = flag.Int("n", 1<<20, "Number of elements.")
	flagA         = flag.Float64("a", 2.5, "Scalar a in y = a*x + y.")
	flagDevice    = flag.Int("device", 0, "Device to run on.")
	flagBlockSize = flag.Int("block", 256, "Number of threads per block.")
	flagCache     = flag.Bool("cache", true, "Use the kernel cache, see -cache_dir.")
	flagCacheDir  = flag.String("cache_dir", "", "Kernel cache directory. Defaults to $"+kernelcache.DirEnv+
		" or a directory under the user cache directory.")
	flagTolerance = flag.Float64("tolerance", 1e-5, "Relative tolerance used to verify the results.")
)

const saxpySource = `
extern "C" __global__ void saxpy(float a, const float *x, float *y, int n) {
	int i = blockIdx.x * blockDim.x + threadIdx.x;
	if (i < n) {
		y[i] = a * x[i] + y[i];
	}
}
`

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagN <= 0 || *flagBlockSize <= 0 {
		klog.Fatalf("-n and -block must be positive")
	}
	runtime.LockOSThread()
	hip.MustLoad()
	hiprtc.MustLoad()
	device := hip.Device(*flagDevice)
	must.M(hip.SetDevice(device))
	props := must.M1(device.Properties())
	fmt.Printf("Running on %s: %s\n", device, props.Name)

	compiled := must.M1(compileSaxpy(device))
	if compiled.FromCache {
		fmt.Println("Kernel retrieved from the cache.")
	}
	module := must.M1(hip.LoadModule(compiled.Code))
	defer func() { must.M(module.Unload()) }()
	kernel := must.M1(module.Function("saxpy"))

	n := *flagN
	a := float32(*flagA)
	x, y := make([]float32, n), make([]float32, n)
	for ii := range n {
		x[ii] = math32.Sin(float32(ii))
		y[ii] = math32.Cos(float32(ii))
	}
	elapsed := must.M1(runSaxpy(kernel, a, x, y))
	fmt.Printf("saxpy of %d elements took %s (%.2f GB/s)\n", n, elapsed,
		float64(3*4*n)/elapsed.Seconds()/1e9)

	if mismatches := verify(a, x, y, float32(*flagTolerance)); mismatches > 0 {
		klog.Fatalf("%d of %d results don't match", mismatches, n)
	}
	fmt.Println("Results verified.")
}

func compileSaxpy(device hip.Device) (*hiprtc.Compiled, error) {
	arch, err := hiprtc.DeviceArch(device)
	if err != nil {
		return nil, err
	}
	compilation := hiprtc.NewCompilation(saxpySource).WithName("saxpy.hip").WithOptions("-O3").WithArch(arch)
	if *flagCache {
		var cache *kernelcache.Cache
		if *flagCacheDir != "" {
			cache, err = kernelcache.New(*flagCacheDir)
		} else {
			cache, err = kernelcache.Default()
		}
		if err != nil {
			klog.Warningf("Kernel cache disabled: %v", err)
		} else {
			compilation = compilation.WithCache(cache)
		}
	}
	return compilation.Done()
}

// runSaxpy computes y = a*x + y on the device, and returns the kernel time measured with events.
// y is overwritten with the result.
func runSaxpy(kernel hip.Function, a float32, x, y []float32) (elapsed time.Duration, err error) {
	n := len(x)
	stream, err := hip.CreateStream()
	if err != nil {
		return 0, err
	}
	defer keepFirstError(&err, stream.Destroy)

	xPtr, err := hip.MallocFor[float32](n)
	if err != nil {
		return 0, err
	}
	defer keepFirstError(&err, xPtr.Free)
	yPtr, err := hip.MallocFor[float32](n)
	if err != nil {
		return 0, err
	}
	defer keepFirstError(&err, yPtr.Free)
	if err = hip.CopyToDevice(xPtr, x); err != nil {
		return 0, err
	}
	if err = hip.CopyToDevice(yPtr, y); err != nil {
		return 0, err
	}

	start, err := hip.CreateEvent()
	if err != nil {
		return 0, err
	}
	defer keepFirstError(&err, start.Destroy)
	stop, err := hip.CreateEvent()
	if err != nil {
		return 0, err
	}
	defer keepFirstError(&err, stop.Destroy)

	blockSize := uint32(*flagBlockSize)
	config := hip.LaunchConfig{
		Grid:   hip.D1((uint32(n) + blockSize - 1) / blockSize),
		Block:  hip.D1(blockSize),
		Stream: stream,
	}
	args := hip.NewKernelArgs().Float32(a).Pointer(xPtr).Pointer(yPtr).Int32(int32(n))
	if err = start.Record(stream); err != nil {
		return 0, err
	}
	if err = hip.LaunchKernel(kernel, config, args.Bytes()); err != nil {
		return 0, err
	}
	if err = stop.Record(stream); err != nil {
		return 0, err
	}
	if err = stream.Synchronize(); err != nil {
		return 0, err
	}
	if elapsed, err = hip.EventElapsedTime(start, stop); err != nil {
		return 0, err
	}
	if err = hip.CopyFromDevice(y, yPtr); err != nil {
		return 0, err
	}
	return elapsed, nil
}

// verify compares the device results in y with a*x + y computed on the host, with the original y recomputed
// from its index. It returns the number of mismatches.
func verify(a float32, x, y []float32, tolerance float32) (mismatches int) {
	for ii := range x {
		want := a*x[ii] + math32.Cos(float32(ii))
		if !closeEnough(want, y[ii], tolerance) {
			if mismatches < 10 {
				klog.Errorf("y[%d]=%g, wanted %g", ii, y[ii], want)
			}
			mismatches++
		}
	}
	return
}

func closeEnough(want, got, tolerance float32) bool {
	diff := math32.Abs(want - got)
	return diff <= tolerance || diff <= tolerance*math32.Max(math32.Abs(want), math32.Abs(got))
}

// keepFirstError runs the cleanup, and stores its error in err if there wasn't one already.
func keepFirstError(err *error, cleanup func() error) {
	if cleanupErr := cleanup(); cleanupErr != nil && *err == nil {
		*err = cleanupErr
	}
}
