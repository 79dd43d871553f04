//go:build linux

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

package dynlib

// This file handles loading of dynamic libraries for linux.
//
// It implements:
//
//	osDefaultLibraryPaths() []string
//	dlopen(path string) (unsafe.Pointer, error)
//	dlsym(handle unsafe.Pointer, symbol string) (unsafe.Pointer, error)
//	dlclose(handle unsafe.Pointer) error
//
// Modified version of https://github.com/coreos/pkg/blob/main/dlopen/dlopen.go, licenced with Apache 2.0 license
// https://github.com/coreos/pkg/blob/main/LICENSE

// #cgo LDFLAGS: -ldl
/*
#include <stdlib.h>
#include <dlfcn.h>
*/
import "C"
import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	reLdConfInclude = regexp.MustCompile(`^\s*include\s*(.*)$`)
	reLdConfComment = regexp.MustCompile(`^\s*#`)
	reLdConfPath    = regexp.MustCompile(`^\s*(.+?)\s*$`)
)

// osDefaultLibraryPaths is called during initialization to set the default search paths.
// It includes "$ROCM_PATH/lib", "/opt/rocm/lib", the absolute entries of LD_LIBRARY_PATH and the
// directories listed in /etc/ld.so.conf.
func osDefaultLibraryPaths() []string {
	var paths []string
	if rocmPath := os.Getenv(RocmPathEnv); rocmPath != "" && path.IsAbs(rocmPath) {
		paths = append(paths, filepath.Join(rocmPath, "lib"))
	}
	paths = append(paths, "/opt/rocm/lib")

	for _, ldPath := range strings.Split(os.Getenv("LD_LIBRARY_PATH"), ":") {
		if ldPath == "" || !path.IsAbs(ldPath) {
			// No empty or relative paths.
			continue
		}
		paths = append(paths, ldPath)
	}
	return loadLibraryPaths(paths, "/etc/ld.so.conf")
}

// loadLibraryPaths appends to paths the directories listed in the ld.so.conf formatted file, following
// its "include" directives.
func loadLibraryPaths(paths []string, fileWithIncludes string) []string {
	klog.V(2).Infof("Loading paths for libraries from %q", fileWithIncludes)
	file, err := os.Open(fileWithIncludes)
	if err != nil {
		klog.V(1).Infof("Failed to load paths for libraries from %q: %v", fileWithIncludes, err)
		return paths
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if parts := reLdConfInclude.FindStringSubmatch(line); len(parts) > 0 {
			pattern := parts[1]
			if !path.IsAbs(pattern) {
				pattern = filepath.Join(filepath.Dir(fileWithIncludes), pattern)
			}
			files, err := filepath.Glob(pattern)
			if err != nil {
				klog.Errorf("Failed to load paths for libraries while expanding include entry %q: %v", parts[1], err)
				continue
			}
			for _, includeFile := range files {
				paths = loadLibraryPaths(paths, includeFile)
			}

		} else if reLdConfComment.MatchString(line) {
			continue

		} else if parts := reLdConfPath.FindStringSubmatch(line); len(parts) > 0 {
			paths = append(paths, parts[1])
		}
	}
	if err := scanner.Err(); err != nil {
		klog.Errorf("Error while loading paths for libraries from %q: %v", fileWithIncludes, err)
	}
	return paths
}

func dlopen(libPath string) (unsafe.Pointer, error) {
	nameC := C.CString(libPath)
	defer C.free(unsafe.Pointer(nameC))
	C.dlerror()
	handle := C.dlopen(nameC, C.RTLD_LAZY|C.RTLD_LOCAL)
	if handle == nil {
		return nil, errors.Errorf("failed to dynamically load %q: %s -- check with `ldd %s` in case there are missing required libraries",
			libPath, C.GoString(C.dlerror()), libPath)
	}
	return handle, nil
}

func dlsym(handle unsafe.Pointer, symbol string) (unsafe.Pointer, error) {
	sym := C.CString(symbol)
	defer C.free(unsafe.Pointer(sym))

	C.dlerror()
	p := C.dlsym(handle, sym)
	e := C.dlerror()
	if e != nil {
		return nil, errors.Errorf("error resolving symbol %q: %s", symbol, C.GoString(e))
	}
	if p == nil {
		return nil, errors.Errorf("symbol %q resolved to a nil address", symbol)
	}
	return p, nil
}

func dlclose(handle unsafe.Pointer) error {
	C.dlerror()
	if C.dlclose(handle) != 0 {
		return errors.Errorf("dlclose failed: %s", C.GoString(C.dlerror()))
	}
	return nil
}
