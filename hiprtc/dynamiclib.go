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
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gomlx/gohip/internal/dynlib"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// KnownLibraries lists the libraries tried, in order, to find the hiprtc entry points.
// Older ROCm releases export hiprtc from the runtime library itself.
//
// You can change it during initialization, but not after the library is loaded.
var KnownLibraries = []string{
	"libhiprtc.so", "libhiprtc.so.6", "libhiprtc.so.5",
	"libamdhip64.so", "libamdhip64.so.6", "libamdhip64.so.5",
	"libnvhip64.so",
}

var entryPoints = []string{
	"hiprtcGetErrorString", "hiprtcVersion",
	"hiprtcCreateProgram", "hiprtcDestroyProgram", "hiprtcAddNameExpression", "hiprtcCompileProgram",
	"hiprtcGetProgramLogSize", "hiprtcGetProgramLog", "hiprtcGetCodeSize", "hiprtcGetCode",
	"hiprtcGetLoweredName",
}

var requiredEntryPoints = []string{
	"hiprtcCreateProgram", "hiprtcDestroyProgram", "hiprtcCompileProgram", "hiprtcGetCodeSize", "hiprtcGetCode",
}

type library struct {
	lib     *dynlib.Library
	symbols map[string]unsafe.Pointer
}

var (
	loadOnce sync.Once
	loadErr  error
	loaded   atomic.Pointer[library]
)

// Load locates and opens the hiprtc library, and resolves its entry points.
//
// It is called automatically by every function of the package, and it only does the work once.
// It is safe to call it concurrently.
func Load() error {
	loadOnce.Do(func() {
		var lib *library
		lib, loadErr = loadLibrary(KnownLibraries)
		if loadErr == nil {
			loaded.Store(lib)
		}
	})
	return loadErr
}

// MustLoad is like Load, but it aborts the program (klog.Fatalf) if hiprtc can't be loaded.
func MustLoad() {
	if err := Load(); err != nil {
		klog.Fatalf("Failed to load hiprtc: %+v", err)
	}
}

// LibraryPath returns the path of the library from where hiprtc was loaded.
func LibraryPath() (string, error) {
	lib, err := getLibrary()
	if err != nil {
		return "", err
	}
	return lib.lib.Path(), nil
}

// loadLibrary tries each candidate in turn: a library that opens but doesn't export hiprtc is skipped.
func loadLibrary(candidates []string) (*library, error) {
	var failures []string
	for _, name := range candidates {
		dl, err := dynlib.Open(name)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		symbols, err := resolveEntryPoints(dl)
		if err != nil {
			klog.Warningf("hiprtc: skipping %s: %v", dl, err)
			_ = dl.Close()
			failures = append(failures, err.Error())
			continue
		}
		klog.V(1).Infof("hiprtc loaded from %s", dl)
		return &library{lib: dl, symbols: symbols}, nil
	}
	return nil, errors.Errorf("failed to load hiprtc from any of %q: %v", candidates, failures)
}

func resolveEntryPoints(dl *dynlib.Library) (map[string]unsafe.Pointer, error) {
	symbols := make(map[string]unsafe.Pointer, len(entryPoints))
	for _, name := range entryPoints {
		if fn, err := dl.Symbol(name); err == nil {
			symbols[name] = fn
		}
	}
	for _, name := range requiredEntryPoints {
		if _, found := symbols[name]; !found {
			return nil, errors.Errorf("library %s doesn't export %q", dl, name)
		}
	}
	return symbols, nil
}

func getLibrary() (*library, error) {
	if lib := loaded.Load(); lib != nil {
		return lib, nil
	}
	if err := Load(); err != nil {
		return nil, err
	}
	return loaded.Load(), nil
}

func entryPoint(name string) (unsafe.Pointer, error) {
	lib, err := getLibrary()
	if err != nil {
		return nil, err
	}
	fn, found := lib.symbols[name]
	if !found {
		return nil, errors.Errorf("entry point %q not available in %s", name, lib.lib)
	}
	return fn, nil
}
