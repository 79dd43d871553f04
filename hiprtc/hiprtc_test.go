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
	"flag"
	"runtime"
	"testing"

	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

var flagDevice = flag.Int("device", 0, "HIP device used by the tests that require a GPU")

func init() {
	klog.InitFlags(nil)
}

type errTester[T any] struct {
	value T
	err   error
}

// capture is a shortcut to test that there is no error and return the value.
func capture[T any](value T, err error) errTester[T] {
	return errTester[T]{value, err}
}

func (e errTester[T]) Test(t *testing.T) T {
	require.NoError(t, e.err)
	return e.value
}

// requireCompiler skips the test if hiprtc, the HIP runtime or a device are not available.
// Otherwise, it locks the test goroutine to its OS thread and selects the device set with --device.
func requireCompiler(t *testing.T) {
	t.Helper()
	if err := Load(); err != nil {
		t.Skipf("hiprtc not available: %v", err)
	}
	if err := hip.Load(); err != nil {
		t.Skipf("HIP runtime not available: %v", err)
	}
	if count, err := hip.DeviceCount(); err != nil || count == 0 {
		t.Skipf("No HIP device available (count=%d, err=%v)", count, err)
	}
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
	require.NoError(t, hip.SetDevice(hip.Device(*flagDevice)))
}

func TestResultNames(t *testing.T) {
	require.Equal(t, "HIPRTC_SUCCESS", Success.String())
	require.Equal(t, "HIPRTC_ERROR_COMPILATION", ErrorCompilation.String())
	require.Equal(t, "HIPRTC_ERROR_INTERNAL_ERROR", ErrorInternalError.Error())
	names := make(map[string]bool)
	for r := range resultTable {
		require.True(t, r.IsKnown())
		require.False(t, names[r.String()], "duplicate name %q", r.String())
		names[r.String()] = true
	}
	require.Len(t, names, 12)

	require.False(t, Result(12).IsKnown())
	require.Equal(t, "hiprtcErrorUnknownResult(12)", Result(12).String())
	require.Equal(t, status.CategoryUnsupported, Result(12).Category())
}

func TestResultCategories(t *testing.T) {
	require.Equal(t, status.CategoryNone, Success.Category())
	require.Equal(t, status.CategoryResourceExhaustion, ErrorOutOfMemory.Category())
	require.Equal(t, status.CategoryInvalidUsage, ErrorCompilation.Category())
	require.Equal(t, status.CategoryInvalidUsage, ErrorInvalidProgram.Category())
	require.Equal(t, status.CategoryInvalidUsage, ErrorInvalidOption.Category())
	require.Equal(t, status.CategoryStateConflict, ErrorNoLoweredNamesBeforeCompilation.Category())
	require.Equal(t, status.CategoryUnsupported, ErrorInternalError.Category())
}

func TestNewError(t *testing.T) {
	require.NoError(t, newError("hiprtcCompileProgram", Success))
	err := newError("hiprtcCompileProgram", ErrorCompilation)
	require.ErrorIs(t, err, ErrorCompilation)
	require.Contains(t, err.Error(), "hiprtcCompileProgram failed: HIPRTC_ERROR_COMPILATION (6)")
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))

	var rtcErr *Error
	require.True(t, errors.As(err, &rtcErr))
	rtcErr.Log = "kernel.hip:1:1: error: unknown type name 'foo'"
	require.Contains(t, err.Error(), "unknown type name 'foo'")

	// The result and status code spaces are separate: 1 is out of memory in hiprtc, invalid value in HIP.
	err = newError("hiprtcCreateProgram", ErrorOutOfMemory)
	require.ErrorIs(t, err, ErrorOutOfMemory)
	require.NotErrorIs(t, err, hip.ErrorInvalidValue)
	require.NotErrorIs(t, err, hip.ErrorOutOfMemory)
	require.Equal(t, status.CategoryResourceExhaustion, status.CategoryOf(err))
}

func TestErrorString(t *testing.T) {
	if err := Load(); err != nil {
		require.Equal(t, "HIPRTC_ERROR_COMPILATION", ErrorString(ErrorCompilation))
		return
	}
	require.NotEmpty(t, ErrorString(ErrorCompilation))
	major, minor, err := Version()
	require.NoError(t, err)
	t.Logf("hiprtc version %d.%d", major, minor)
}
