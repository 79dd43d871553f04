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
)

// Stream is an ordered queue of asynchronous work on a device.
// The zero value is the default (null) stream.
type Stream uintptr

// DefaultStream is the null stream, implicitly synchronized with all other blocking streams.
const DefaultStream Stream = 0

// String implements fmt.Stringer.
func (s Stream) String() string {
	if s == DefaultStream {
		return "Stream(default)"
	}
	return fmt.Sprintf("Stream(0x%x)", uintptr(s))
}

// CreateStream creates a new stream on the current device. It must be released with Destroy.
func CreateStream() (Stream, error) {
	fn, err := entryPoint("hipStreamCreate")
	if err != nil {
		return 0, err
	}
	var handle C.uintptr_t
	if err := toError("hipStreamCreate", C.call_hipCreateHandle(fn, &handle)); err != nil {
		return 0, err
	}
	return Stream(handle), nil
}

// Destroy the stream, and set it to the null handle.
// Destroying the default stream, or an already destroyed one, returns an error wrapping ErrorInvalidHandle.
func (s *Stream) Destroy() error {
	return destroyHandle("hipStreamDestroy", (*uintptr)(s))
}

// Synchronize blocks until all work queued on the stream is finished.
func (s Stream) Synchronize() error {
	return useHandle("hipStreamSynchronize", uintptr(s))
}

// Query returns whether all work queued on the stream is finished, without blocking.
// Pending work is not an error: it returns false and a nil error.
func (s Stream) Query() (done bool, err error) {
	return queryHandle("hipStreamQuery", uintptr(s))
}

// useHandle calls a native op that takes only a handle.
func useHandle(op string, handle uintptr) error {
	fn, err := entryPoint(op)
	if err != nil {
		return err
	}
	return toError(op, C.call_hipUseHandle(fn, C.uintptr_t(handle)))
}

// destroyHandle calls the native destructor op on *handle, and on success sets it to the null handle.
// The null handle is rejected with ErrorInvalidHandle without calling the runtime.
func destroyHandle(op string, handle *uintptr) error {
	if *handle == 0 {
		return newError(op, ErrorInvalidHandle)
	}
	if err := useHandle(op, *handle); err != nil {
		return err
	}
	*handle = 0
	return nil
}

// queryHandle calls a native query op, mapping ErrorNotReady to (false, nil).
func queryHandle(op string, handle uintptr) (done bool, err error) {
	fn, err := entryPoint(op)
	if err != nil {
		return false, err
	}
	s := Status(C.call_hipUseHandle(fn, C.uintptr_t(handle)))
	return queryResult(op, s)
}

func queryResult(op string, s Status) (done bool, err error) {
	switch s {
	case Success:
		return true, nil
	case ErrorNotReady:
		return false, nil
	default:
		return false, newError(op, s)
	}
}
