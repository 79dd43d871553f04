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

// Package dynlib locates and opens the native HIP shared libraries (dlopen), and resolves their symbols.
//
// It only deals with unsafe.Pointer values, since CGO C types cannot cross package boundaries (see
// https://github.com/golang/go/issues/13467): the calling packages cast the symbols to their own C function types.
package dynlib

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// This file holds the common definitions, the OS specific parts are in dynlib_<os>.go files.

const (
	// LibraryPathsEnv is the name of the environment variable that defines the search paths for the HIP libraries.
	// It is a ":" separated list of directories.
	LibraryPathsEnv = "GOHIP_LIBRARY_PATH"

	// RocmPathEnv is the environment variable conventionally set to the ROCm installation root.
	RocmPathEnv = "ROCM_PATH"
)

// searchPaths is set during initialization: it holds the directories searched for libraries, before
// falling back to the system loader.
var searchPaths []string

func init() {
	libPaths, found := os.LookupEnv(LibraryPathsEnv)
	searchPaths = parseSearchPaths(libPaths, found)
}

// parseSearchPaths returns the paths configured in GOHIP_LIBRARY_PATH, if set, or the OS default paths otherwise.
func parseSearchPaths(libPaths string, found bool) []string {
	if !found {
		return osDefaultLibraryPaths()
	}
	return slices.DeleteFunc(strings.Split(libPaths, ":"), func(p string) bool {
		return p == "" // Remove empty paths.
	})
}

// SearchPaths returns the directories searched for the native libraries, in order.
func SearchPaths() []string {
	return slices.Clone(searchPaths)
}

// Library is an open handle to a shared library (.so).
type Library struct {
	handle unsafe.Pointer
	name   string
	path   string
}

// Name returns the candidate name that was successfully opened, e.g.: "libamdhip64.so".
func (l *Library) Name() string {
	return l.name
}

// Path returns the path given to the dynamic loader: either an absolute path found in one of the search paths,
// or the bare library name if it was resolved by the system loader.
func (l *Library) Path() string {
	return l.path
}

// String implements fmt.Stringer.
func (l *Library) String() string {
	if l.path == l.name {
		return l.name
	}
	return l.name + " (" + l.path + ")"
}

// Find searches for the library file name in the search paths, and returns the first one found.
func Find(name string) (libPath string, found bool) {
	if path.IsAbs(name) {
		return name, fileExists(name)
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Open tries to open each one of the candidates in order, and returns the first one that succeeds.
//
// Each candidate is first searched for in the SearchPaths, and if not found there, it is handed by name to the
// system dynamic loader (which uses LD_LIBRARY_PATH and the ld.so cache).
//
// It returns an error listing the failure of every candidate if none could be opened.
func Open(candidates ...string) (*Library, error) {
	if len(candidates) == 0 {
		return nil, errors.New("dynlib.Open() requires at least one candidate library name")
	}
	var failures []string
	for _, name := range candidates {
		tries := []string{name}
		if libPath, found := Find(name); found && libPath != name {
			tries = []string{libPath, name}
		}
		for _, libPath := range tries {
			handle, err := dlopen(libPath)
			if err != nil {
				klog.V(2).Infof("dynlib: failed to open %q: %v", libPath, err)
				failures = append(failures, err.Error())
				continue
			}
			klog.V(1).Infof("dynlib: loaded %q from %q", name, libPath)
			return &Library{handle: handle, name: name, path: libPath}, nil
		}
	}
	return nil, errors.Errorf("can't find any of the libraries %q (searched in %v and the system loader paths; set %s "+
		"to the directory with the libraries): %s",
		candidates, searchPaths, LibraryPathsEnv, strings.Join(failures, "; "))
}

// Symbol returns the address of the symbol exported by the library.
func (l *Library) Symbol(symbol string) (unsafe.Pointer, error) {
	if l == nil || l.handle == nil {
		return nil, errors.Errorf("symbol %q requested from a closed (or nil) library", symbol)
	}
	p, err := dlsym(l.handle, symbol)
	if err != nil {
		return nil, errors.WithMessagef(err, "library %s", l)
	}
	return p, nil
}

// Close the library: all symbols resolved from it become invalid.
// Closing an already closed library is a no-op.
func (l *Library) Close() error {
	if l == nil || l.handle == nil {
		return nil
	}
	err := dlclose(l.handle)
	l.handle = nil
	if err != nil {
		return errors.WithMessagef(err, "closing %s", l)
	}
	return nil
}
