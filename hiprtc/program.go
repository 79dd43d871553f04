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

/*
#include "hiprtc_calls.h"
*/
import "C"
import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultProgramName is used by the builder when no name is given. It only shows up in the compiler messages.
const DefaultProgramName = "program.hip"

// Program is a hiprtc program: the source code, headers and, once compiled, the code object and the log.
// The zero value is the null program.
//
// It must be released with Destroy.
type Program uintptr

// String implements fmt.Stringer.
func (p Program) String() string {
	return fmt.Sprintf("Program(0x%x)", uintptr(p))
}

// CreateProgram creates a program from the source code. name is used in the compiler messages.
//
// headerNames are the names by which the headers are #include'd, and headerSources their contents:
// both must have the same length, otherwise an error is returned before calling the compiler.
func CreateProgram(source, name string, headerNames, headerSources []string) (Program, error) {
	if len(headerNames) != len(headerSources) {
		return 0, errors.Errorf("hiprtc.CreateProgram(%q): %d header names given for %d header sources",
			name, len(headerNames), len(headerSources))
	}
	fn, err := entryPoint("hiprtcCreateProgram")
	if err != nil {
		return 0, err
	}
	cSource := C.CString(source)
	defer cFree(cSource)
	cName := C.CString(name)
	defer cFree(cName)
	cHeaders, freeHeaders := cStrings(headerSources)
	defer freeHeaders()
	cIncludeNames, freeIncludeNames := cStrings(headerNames)
	defer freeIncludeNames()

	var prog C.uintptr_t
	err = toError("hiprtcCreateProgram", C.call_hiprtcCreateProgram(fn, &prog, cSource, cName,
		C.int(len(headerSources)), cHeaders, cIncludeNames))
	if err != nil {
		return 0, err
	}
	return Program(prog), nil
}

// Destroy releases the program, and sets it to the null program.
func (p *Program) Destroy() error {
	fn, err := entryPoint("hiprtcDestroyProgram")
	if err != nil {
		return err
	}
	prog := C.uintptr_t(*p)
	if err := toError("hiprtcDestroyProgram", C.call_hiprtcDestroyProgram(fn, &prog)); err != nil {
		return err
	}
	*p = 0
	return nil
}

// AddNameExpression registers the name expression of a __global__ function or __device__ variable
// (e.g. "&kernel<float>"), whose lowered (mangled) name is requested after compilation with LoweredName.
// It must be called before Compile.
func (p Program) AddNameExpression(nameExpression string) error {
	fn, err := entryPoint("hiprtcAddNameExpression")
	if err != nil {
		return err
	}
	cExpr := C.CString(nameExpression)
	defer cFree(cExpr)
	if err := toError("hiprtcAddNameExpression", C.call_hiprtcAddNameExpression(fn, C.uintptr_t(p), cExpr)); err != nil {
		return errors.WithMessagef(err, "name expression %q", nameExpression)
	}
	return nil
}

// Compile the program with the given compiler options, e.g. "--offload-arch=gfx90a" or "-O3".
//
// On failure, the compiler log (see Log) describes the problem.
func (p Program) Compile(options ...string) error {
	fn, err := entryPoint("hiprtcCompileProgram")
	if err != nil {
		return err
	}
	cOptions, freeOptions := cStrings(options)
	defer freeOptions()
	return toError("hiprtcCompileProgram", C.call_hiprtcCompileProgram(fn, C.uintptr_t(p), C.int(len(options)), cOptions))
}

// Log returns the compilation log, possibly empty.
func (p Program) Log() (string, error) {
	log, err := p.retrieve("hiprtcGetProgramLogSize", "hiprtcGetProgramLog")
	if err != nil {
		return "", err
	}
	// The log is NUL terminated.
	return string(bytes.TrimRight(log, "\x00")), nil
}

// Code returns the compiled code object, to be loaded with hip.LoadModule.
func (p Program) Code() ([]byte, error) {
	return p.retrieve("hiprtcGetCodeSize", "hiprtcGetCode")
}

// retrieve fetches a variable sized output of the program using the pair of native size and fill entry points.
func (p Program) retrieve(sizeOp, fillOp string) ([]byte, error) {
	sizeFn, err := entryPoint(sizeOp)
	if err != nil {
		return nil, err
	}
	fillFn, err := entryPoint(fillOp)
	if err != nil {
		return nil, err
	}
	return retrieveSized(
		func() (int, error) {
			var size C.size_t
			err := toError(sizeOp, C.call_hiprtcGetSize(sizeFn, C.uintptr_t(p), &size))
			return int(size), err
		},
		func(buf []byte) error {
			return toError(fillOp, C.call_hiprtcFill(fillFn, C.uintptr_t(p), unsafe.Pointer(&buf[0])))
		})
}

// retrieveSized implements the two-step retrieval of outputs whose size is not known in advance: sizeFn
// returns the size, and fillFn fills a buffer of that size. A zero size returns an empty output, without
// calling fillFn.
func retrieveSized(sizeFn func() (int, error), fillFn func(buf []byte) error) ([]byte, error) {
	size, err := sizeFn()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	if err := fillFn(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// LoweredName returns the lowered (mangled) name of a name expression registered with AddNameExpression,
// after the program is compiled. Use it with hip.Module.Function or hip.Module.Global.
func (p Program) LoweredName(nameExpression string) (string, error) {
	fn, err := entryPoint("hiprtcGetLoweredName")
	if err != nil {
		return "", err
	}
	cExpr := C.CString(nameExpression)
	defer cFree(cExpr)
	var lowered *C.char
	if err := toError("hiprtcGetLoweredName", C.call_hiprtcGetLoweredName(fn, C.uintptr_t(p), cExpr, &lowered)); err != nil {
		return "", errors.WithMessagef(err, "name expression %q", nameExpression)
	}
	// The lowered name is owned by the program.
	return C.GoString(lowered), nil
}
