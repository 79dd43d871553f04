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
	"time"
)

// Event marks a point in a stream, used to synchronize and to time work.
type Event uintptr

// EventFlags configure the behavior of events created with CreateEventWithFlags.
type EventFlags uint32

const (
	EventDefault       EventFlags = 0
	EventBlockingSync  EventFlags = 1
	EventDisableTiming EventFlags = 2
	EventInterprocess  EventFlags = 4
)

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("Event(0x%x)", uintptr(e))
}

// CreateEvent creates an event with the default flags. It must be released with Destroy.
func CreateEvent() (Event, error) {
	fn, err := entryPoint("hipEventCreate")
	if err != nil {
		return 0, err
	}
	var handle C.uintptr_t
	if err := toError("hipEventCreate", C.call_hipCreateHandle(fn, &handle)); err != nil {
		return 0, err
	}
	return Event(handle), nil
}

// CreateEventWithFlags creates an event with the given flags. It must be released with Destroy.
func CreateEventWithFlags(flags EventFlags) (Event, error) {
	fn, err := entryPoint("hipEventCreateWithFlags")
	if err != nil {
		return 0, err
	}
	var handle C.uintptr_t
	if err := toError("hipEventCreateWithFlags", C.call_hipEventCreateWithFlags(fn, &handle, C.uint(flags))); err != nil {
		return 0, err
	}
	return Event(handle), nil
}

// Record the event on the stream: it completes when all work queued before it on the stream is done.
func (e Event) Record(stream Stream) error {
	fn, err := entryPoint("hipEventRecord")
	if err != nil {
		return err
	}
	return toError("hipEventRecord", C.call_hipEventRecord(fn, C.uintptr_t(e), C.uintptr_t(stream)))
}

// Synchronize blocks until the event completes.
func (e Event) Synchronize() error {
	return useHandle("hipEventSynchronize", uintptr(e))
}

// Query returns whether the event completed, without blocking.
// An incomplete event is not an error: it returns false and a nil error.
func (e Event) Query() (done bool, err error) {
	return queryHandle("hipEventQuery", uintptr(e))
}

// Destroy the event, and set it to the null handle. Destroying it again returns an error wrapping
// ErrorInvalidHandle.
func (e *Event) Destroy() error {
	return destroyHandle("hipEventDestroy", (*uintptr)(e))
}

// EventElapsedTime returns the time elapsed between two completed events.
// The runtime measures it with a resolution of about half a microsecond.
func EventElapsedTime(start, stop Event) (time.Duration, error) {
	fn, err := entryPoint("hipEventElapsedTime")
	if err != nil {
		return 0, err
	}
	var ms C.float
	err = toError("hipEventElapsedTime", C.call_hipEventElapsedTime(fn, &ms, C.uintptr_t(start), C.uintptr_t(stop)))
	if err != nil {
		return 0, err
	}
	return millisecondsToDuration(float32(ms)), nil
}

func millisecondsToDuration(ms float32) time.Duration {
	return time.Duration(float64(ms) * float64(time.Millisecond))
}
