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
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gomlx/gohip/internal/dynlib"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// PlatformEnv is the name of the environment variable that restricts which platform library is loaded:
// "amd" or "nvidia". If not set, both are tried, AMD first.
const PlatformEnv = "GOHIP_PLATFORM"

const (
	PlatformAMD    = "amd"
	PlatformNVIDIA = "nvidia"
)

var (
	// KnownLibraries maps each platform to the library names tried, in order.
	//
	// You can change it during initialization, but not after the library is loaded.
	KnownLibraries = map[string][]string{
		PlatformAMD:    {"libamdhip64.so", "libamdhip64.so.6", "libamdhip64.so.5"},
		PlatformNVIDIA: {"libnvhip64.so"},
	}

	// platformsOrder in which platforms are tried.
	platformsOrder = []string{PlatformAMD, PlatformNVIDIA}
)

// entryPoints lists every native function used by the package.
var entryPoints = []string{
	"hipGetErrorString", "hipGetErrorName",
	"hipInit", "hipGetDeviceCount", "hipSetDevice", "hipGetDevice", "hipDeviceGetAttribute",
	"hipGetDeviceProperties", "hipDeviceSetLimit", "hipDeviceSynchronize",
	"hipDriverGetVersion", "hipRuntimeGetVersion", "hipMemGetInfo",
	"hipMalloc", "hipFree", "hipMallocPitch", "hipHostMalloc", "hipHostFree", "hipMemset", "hipMemsetAsync", "hipMemcpy", "hipMemcpyAsync",
	"hipPointerGetAttributes",
	"hipStreamCreate", "hipStreamDestroy", "hipStreamSynchronize", "hipStreamQuery",
	"hipEventCreate", "hipEventCreateWithFlags", "hipEventRecord", "hipEventDestroy", "hipEventSynchronize",
	"hipEventQuery", "hipEventElapsedTime",
	"hipModuleLoadData", "hipModuleGetFunction", "hipModuleGetGlobal", "hipModuleUnload", "hipModuleLaunchKernel",
}

// requiredEntryPoints must be exported by a library for it to be accepted as a HIP runtime.
// The others are only reported as errors when used.
var requiredEntryPoints = []string{"hipGetDeviceCount", "hipMalloc", "hipFree", "hipMemcpy", "hipModuleLaunchKernel"}

// Values of the "extra" kernel launch parameter markers.
const (
	launchParamBufferPointer uintptr = 1
	launchParamBufferSize    uintptr = 2
)

// launchParamEnd returns the platform's terminator of the "extra" kernel launch parameter list.
func launchParamEnd(platform string) uintptr {
	if platform == PlatformAMD {
		return 3
	}
	return 0
}

// library holds the loaded runtime and its resolved entry points.
type library struct {
	lib      *dynlib.Library
	platform string
	symbols  map[string]unsafe.Pointer

	// launchEnd is the terminator of the kernel launch "extra" list, fixed at load time.
	launchEnd uintptr
}

var (
	loadOnce sync.Once
	loadErr  error

	// loaded is set once the library is successfully loaded.
	loaded atomic.Pointer[library]
)

// Load locates and opens the HIP runtime library, and resolves its entry points.
//
// It is called automatically by every function of the package, and it only does the work once: subsequent calls
// return the same result. It is safe to call it concurrently.
//
// The platform libraries are tried in the order AMD then NVIDIA, unless the GOHIP_PLATFORM environment variable
// selects one of them. See dynlib.SearchPaths for where the libraries are searched.
func Load() error {
	loadOnce.Do(func() {
		var lib *library
		lib, loadErr = loadLibrary(os.Getenv(PlatformEnv))
		if loadErr == nil {
			loaded.Store(lib)
		}
	})
	return loadErr
}

// MustLoad is like Load, but it aborts the program (klog.Fatalf) if the HIP runtime can't be loaded.
func MustLoad() {
	if err := Load(); err != nil {
		klog.Fatalf("Failed to load the HIP runtime: %+v", err)
	}
}

// IsLoaded returns whether the HIP runtime library has already been successfully loaded.
// It doesn't trigger the loading.
func IsLoaded() bool {
	return loaded.Load() != nil
}

// Platform returns the platform of the loaded runtime: PlatformAMD or PlatformNVIDIA.
// It loads the library if not yet loaded, and returns an error if it fails.
func Platform() (string, error) {
	lib, err := getLibrary()
	if err != nil {
		return "", err
	}
	return lib.platform, nil
}

// LibraryPath returns the path of the loaded runtime library.
func LibraryPath() (string, error) {
	lib, err := getLibrary()
	if err != nil {
		return "", err
	}
	return lib.lib.Path(), nil
}

func loadLibrary(platformFilter string) (*library, error) {
	platformFilter = strings.ToLower(strings.TrimSpace(platformFilter))
	var failures []string
	for _, platform := range platformsOrder {
		if platformFilter != "" && platformFilter != platform {
			continue
		}
		lib, err := loadPlatform(platform)
		if err == nil {
			return lib, nil
		}
		failures = append(failures, err.Error())
	}
	if len(failures) == 0 {
		return nil, errors.Errorf("unknown platform %q set in $%s, valid values are %q", platformFilter, PlatformEnv,
			platformsOrder)
	}
	return nil, errors.Errorf("failed to load the HIP runtime library: %s", strings.Join(failures, "; "))
}

func loadPlatform(platform string) (*library, error) {
	dl, err := dynlib.Open(KnownLibraries[platform]...)
	if err != nil {
		return nil, err
	}
	symbols, err := resolveEntryPoints(dl)
	if err != nil {
		_ = dl.Close()
		return nil, err
	}
	klog.V(1).Infof("HIP runtime for platform %q loaded from %s", platform, dl)
	return &library{
		lib:       dl,
		platform:  platform,
		symbols:   symbols,
		launchEnd: launchParamEnd(platform),
	}, nil
}

func resolveEntryPoints(dl *dynlib.Library) (map[string]unsafe.Pointer, error) {
	symbols := make(map[string]unsafe.Pointer, len(entryPoints))
	for _, name := range entryPoints {
		fn, err := dl.Symbol(name)
		if err != nil {
			klog.V(2).Infof("HIP entry point %q not available: %v", name, err)
			continue
		}
		symbols[name] = fn
	}
	for _, name := range requiredEntryPoints {
		if _, found := symbols[name]; !found {
			return nil, errors.Errorf("library %s is not a HIP runtime: entry point %q is missing", dl, name)
		}
	}
	return symbols, nil
}

// getLibrary returns the loaded library, loading it if needed.
func getLibrary() (*library, error) {
	if lib := loaded.Load(); lib != nil {
		return lib, nil
	}
	if err := Load(); err != nil {
		return nil, err
	}
	return loaded.Load(), nil
}

// entryPoint returns the address of the native function, loading the library if needed.
func entryPoint(name string) (unsafe.Pointer, error) {
	lib, err := getLibrary()
	if err != nil {
		return nil, err
	}
	return lib.entryPoint(name)
}

func (lib *library) entryPoint(name string) (unsafe.Pointer, error) {
	fn, found := lib.symbols[name]
	if !found {
		return nil, errors.Errorf("entry point %q not available in the HIP runtime %s", name, lib.lib)
	}
	return fn, nil
}
