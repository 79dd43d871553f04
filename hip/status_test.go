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
	"testing"

	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNames(t *testing.T) {
	names := make(map[string]Status, len(statusTable))
	for s := range statusTable {
		name := s.String()
		require.Regexp(t, "^hip(Success|Error[A-Za-z0-9]+)$", name)
		if previous, found := names[name]; found {
			t.Fatalf("status %d and %d share the name %q", previous, s, name)
		}
		names[name] = s
		require.True(t, s.IsKnown())
	}
	assert.Equal(t, "hipSuccess", Success.String())
	assert.Equal(t, "hipErrorOutOfMemory", ErrorOutOfMemory.String())
	assert.Equal(t, "hipErrorNotReady", ErrorNotReady.Error())
	assert.Equal(t, "hipErrorRuntimeOther", ErrorRuntimeOther.String())
}

func TestUnknownStatus(t *testing.T) {
	for _, code := range []int32{10, 12345, -1} {
		s := Status(code)
		require.False(t, s.IsKnown())
		require.Contains(t, s.String(), "hipErrorUnknownStatus(")
		require.Equal(t, status.CategoryUnsupported, s.Category())
	}
	require.Equal(t, "hipErrorUnknownStatus(12345)", Status(12345).String())
}

func TestStatusCategories(t *testing.T) {
	for s, want := range map[Status]status.Category{
		Success:                        status.CategoryNone,
		ErrorOutOfMemory:               status.CategoryResourceExhaustion,
		ErrorInsufficientDriver:        status.CategoryResourceExhaustion,
		ErrorRuntimeMemory:             status.CategoryResourceExhaustion,
		ErrorInvalidValue:              status.CategoryInvalidUsage,
		ErrorInvalidHandle:             status.CategoryInvalidUsage,
		ErrorNotFound:                  status.CategoryInvalidUsage,
		ErrorNotInitialized:            status.CategoryInvalidUsage,
		ErrorInvalidDevicePointer:      status.CategoryInvalidUsage,
		ErrorLaunchFailure:             status.CategoryLaunchFailure,
		ErrorLaunchOutOfResources:      status.CategoryLaunchFailure,
		ErrorIllegalAddress:            status.CategoryLaunchFailure,
		ErrorCooperativeLaunchTooLarge: status.CategoryLaunchFailure,
		ErrorPeerAccessAlreadyEnabled:  status.CategoryStateConflict,
		ErrorAlreadyMapped:             status.CategoryStateConflict,
		ErrorProfilerAlreadyStarted:    status.CategoryStateConflict,
		ErrorNotReady:                  status.CategoryNotReady,
		ErrorNotSupported:              status.CategoryUnsupported,
		ErrorUnknown:                   status.CategoryUnsupported,
	} {
		assert.Equalf(t, want, s.Category(), "category of %s", s)
	}
}

func TestNewError(t *testing.T) {
	require.NoError(t, newError("hipMalloc", Success))

	err := newError("hipMalloc", ErrorOutOfMemory)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrorOutOfMemory))
	require.False(t, errors.Is(err, ErrorInvalidValue))
	require.ErrorIs(t, err, ErrorOutOfMemory)

	var hipErr *Error
	require.True(t, errors.As(err, &hipErr))
	require.Equal(t, "hipMalloc", hipErr.Op)
	require.Equal(t, ErrorOutOfMemory, hipErr.Status)
	require.Contains(t, err.Error(), "hipMalloc failed: hipErrorOutOfMemory (2)")

	require.Equal(t, status.CategoryResourceExhaustion, status.CategoryOf(err))
	require.True(t, status.IsRetryable(err))

	// Errors survive further wrapping.
	wrapped := errors.WithMessage(err, "allocating buffer")
	require.True(t, errors.Is(wrapped, ErrorOutOfMemory))
	require.Equal(t, status.CategoryResourceExhaustion, status.CategoryOf(wrapped))

	// Unknown codes are errors too.
	err = newError("hipFoo", Status(4242))
	require.Error(t, err)
	require.Contains(t, err.Error(), "hipErrorUnknownStatus(4242)")
	require.Equal(t, status.CategoryUnsupported, status.CategoryOf(err))
}

func TestErrorStringAndName(t *testing.T) {
	// Without the runtime, the names known by the package are returned.
	if err := Load(); err != nil {
		require.Equal(t, "hipErrorInvalidValue", ErrorString(ErrorInvalidValue))
		require.Equal(t, "hipErrorInvalidValue", ErrorName(ErrorInvalidValue))
		return
	}
	require.NotEmpty(t, ErrorString(ErrorInvalidValue))
	require.Equal(t, "hipErrorInvalidValue", ErrorName(ErrorInvalidValue))
	require.NotEmpty(t, ErrorString(Status(12345)))
}
