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
	"fmt"

	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
)

// Result is the hiprtcResult code returned by the compiler entry points.
//
// It is a code space of its own: the same integer means different things as a Result and as a hip.Status.
type Result int32

const (
	Success                                Result = 0
	ErrorOutOfMemory                       Result = 1
	ErrorProgramCreationFailure            Result = 2
	ErrorInvalidInput                      Result = 3
	ErrorInvalidProgram                    Result = 4
	ErrorInvalidOption                     Result = 5
	ErrorCompilation                       Result = 6
	ErrorBuiltinOperationFailure           Result = 7
	ErrorNoNameExpressionsAfterCompilation Result = 8
	ErrorNoLoweredNamesBeforeCompilation   Result = 9
	ErrorNameExpressionNotValid            Result = 10
	ErrorInternalError                     Result = 11
)

type resultInfo struct {
	name     string
	category status.Category
}

var resultTable = map[Result]resultInfo{
	Success:                                {"HIPRTC_SUCCESS", status.CategoryNone},
	ErrorOutOfMemory:                       {"HIPRTC_ERROR_OUT_OF_MEMORY", status.CategoryResourceExhaustion},
	ErrorProgramCreationFailure:            {"HIPRTC_ERROR_PROGRAM_CREATION_FAILURE", status.CategoryInvalidUsage},
	ErrorInvalidInput:                      {"HIPRTC_ERROR_INVALID_INPUT", status.CategoryInvalidUsage},
	ErrorInvalidProgram:                    {"HIPRTC_ERROR_INVALID_PROGRAM", status.CategoryInvalidUsage},
	ErrorInvalidOption:                     {"HIPRTC_ERROR_INVALID_OPTION", status.CategoryInvalidUsage},
	ErrorCompilation:                       {"HIPRTC_ERROR_COMPILATION", status.CategoryInvalidUsage},
	ErrorBuiltinOperationFailure:           {"HIPRTC_ERROR_BUILTIN_OPERATION_FAILURE", status.CategoryUnsupported},
	ErrorNoNameExpressionsAfterCompilation: {"HIPRTC_ERROR_NO_NAME_EXPRESSIONS_AFTER_COMPILATION", status.CategoryStateConflict},
	ErrorNoLoweredNamesBeforeCompilation:   {"HIPRTC_ERROR_NO_LOWERED_NAMES_BEFORE_COMPILATION", status.CategoryStateConflict},
	ErrorNameExpressionNotValid:            {"HIPRTC_ERROR_NAME_EXPRESSION_NOT_VALID", status.CategoryInvalidUsage},
	ErrorInternalError:                     {"HIPRTC_ERROR_INTERNAL_ERROR", status.CategoryUnsupported},
}

// String returns the native name of the result, e.g. "HIPRTC_ERROR_COMPILATION".
// Codes not known to this package are rendered as "hiprtcErrorUnknownResult(<code>)".
func (r Result) String() string {
	if info, found := resultTable[r]; found {
		return info.name
	}
	return fmt.Sprintf("hiprtcErrorUnknownResult(%d)", int32(r))
}

// Error implements the error interface.
func (r Result) Error() string {
	return r.String()
}

// IsKnown returns whether the result code is one of the codes defined by this package.
func (r Result) IsKnown() bool {
	_, found := resultTable[r]
	return found
}

// Category of the result. Unknown codes are classified as status.CategoryUnsupported.
func (r Result) Category() status.Category {
	if info, found := resultTable[r]; found {
		return info.category
	}
	return status.CategoryUnsupported
}

// Error is returned by every function of the package whose native call didn't succeed.
// It unwraps to its Result.
type Error struct {
	// Op is the native entry point that failed, e.g. "hiprtcCompileProgram".
	Op string

	// Result returned by the native call.
	Result Result

	// Message is the description provided by the compiler (hiprtcGetErrorString), possibly empty.
	Message string

	// Log is the compilation log, set for failed compilations.
	Log string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %s (%d)", e.Op, e.Result, int32(e.Result))
	if e.Message != "" && e.Message != e.Result.String() {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Log != "" {
		msg = fmt.Sprintf("%s\ncompilation log:\n%s", msg, e.Log)
	}
	return msg
}

// Unwrap returns the Result.
func (e *Error) Unwrap() error {
	return e.Result
}

// Category implements status.Categorized.
func (e *Error) Category() status.Category {
	return e.Result.Category()
}

func newError(op string, r Result) error {
	if r == Success {
		return nil
	}
	return errors.WithStack(&Error{Op: op, Result: r, Message: errorMessage(r)})
}

func toError(op string, r C.int) error {
	return newError(op, Result(r))
}

// errorMessage returns the compiler's description of the result, if the library is already loaded.
func errorMessage(r Result) string {
	lib := loaded.Load()
	if lib == nil {
		return ""
	}
	fn, found := lib.symbols["hiprtcGetErrorString"]
	if !found {
		return ""
	}
	return C.GoString(C.call_hiprtcGetErrorString(fn, C.int(r)))
}

// ErrorString returns the compiler's description of the result.
// If hiprtc can't be loaded, it returns the result name.
func ErrorString(r Result) string {
	if err := Load(); err != nil {
		return r.String()
	}
	if msg := errorMessage(r); msg != "" {
		return msg
	}
	return r.String()
}

// Version returns the hiprtc version.
func Version() (major, minor int, err error) {
	fn, err := entryPoint("hiprtcVersion")
	if err != nil {
		return 0, 0, err
	}
	var cMajor, cMinor C.int
	if err = toError("hiprtcVersion", C.call_hiprtcVersion(fn, &cMajor, &cMinor)); err != nil {
		return 0, 0, err
	}
	return int(cMajor), int(cMinor), nil
}
