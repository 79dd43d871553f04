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

/*
#include "hip_calls.h"
*/
import "C"
import (
	"fmt"

	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
)

// Error is returned by every function of the package whose native call returned a status other than Success.
//
// It unwraps to its Status, so one can use errors.Is(err, hip.ErrorOutOfMemory), and errors.As to
// retrieve the *Error itself.
type Error struct {
	// Op is the native entry point that failed, e.g. "hipMalloc".
	Op string

	// Status returned by the native call.
	Status Status

	// Message is the human-readable description provided by the runtime (hipGetErrorString).
	// It may be empty if it was not available.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" || e.Message == e.Status.String() {
		return fmt.Sprintf("%s failed: %s (%d)", e.Op, e.Status, int32(e.Status))
	}
	return fmt.Sprintf("%s failed: %s (%d): %s", e.Op, e.Status, int32(e.Status), e.Message)
}

// Unwrap returns the Status.
func (e *Error) Unwrap() error {
	return e.Status
}

// Category implements status.Categorized.
func (e *Error) Category() status.Category {
	return e.Status.Category()
}

// newError creates the *Error for a non-success status.
// It returns nil if status is Success.
func newError(op string, s Status) error {
	if s == Success {
		return nil
	}
	return errors.WithStack(&Error{Op: op, Status: s, Message: errorMessage(s)})
}

// toError converts the status returned by the native entry point op to an error (nil on success).
func toError(op string, s C.int) error {
	return newError(op, Status(s))
}

// errorMessage returns the runtime description of the status, if the library is already loaded.
// It never triggers the loading of the library.
func errorMessage(s Status) string {
	lib := loaded.Load()
	if lib == nil {
		return ""
	}
	fn, found := lib.symbols["hipGetErrorString"]
	if !found {
		return ""
	}
	return C.GoString(C.call_hipGetErrorString(fn, C.int(s)))
}

// ErrorString returns the runtime's description of the status.
// If the runtime can't be loaded, it returns the status name.
func ErrorString(s Status) string {
	if err := Load(); err != nil {
		return s.String()
	}
	if msg := errorMessage(s); msg != "" {
		return msg
	}
	return s.String()
}

// ErrorName returns the runtime's name for the status, e.g. "hipErrorOutOfMemory".
// If the runtime can't be loaded, it returns the name known by this package.
func ErrorName(s Status) string {
	fn, err := entryPoint("hipGetErrorName")
	if err != nil {
		return s.String()
	}
	name := C.GoString(C.call_hipGetErrorName(fn, C.int(s)))
	if name == "" {
		return s.String()
	}
	return name
}
