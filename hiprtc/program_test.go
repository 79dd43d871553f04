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
	"testing"

	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/status"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRetrieveSized(t *testing.T) {
	// Zero size: fill is not called.
	out, err := retrieveSized(
		func() (int, error) { return 0, nil },
		func([]byte) error { t.Fatal("fill called for an empty output"); return nil })
	require.NoError(t, err)
	require.Empty(t, out)

	// The buffer given to fill has the reported size.
	out, err = retrieveSized(
		func() (int, error) { return 5, nil },
		func(buf []byte) error {
			require.Len(t, buf, 5)
			copy(buf, "hello")
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), out)

	// Errors of both steps are returned.
	sizeErr := newError("hiprtcGetCodeSize", ErrorInvalidProgram)
	_, err = retrieveSized(func() (int, error) { return 0, sizeErr }, nil)
	require.ErrorIs(t, err, ErrorInvalidProgram)
	fillErr := newError("hiprtcGetCode", ErrorInvalidInput)
	_, err = retrieveSized(func() (int, error) { return 3, nil }, func([]byte) error { return fillErr })
	require.ErrorIs(t, err, ErrorInvalidInput)
}

func TestCreateProgramHeadersMismatch(t *testing.T) {
	// Rejected before the compiler library is even loaded.
	_, err := CreateProgram("", "test.hip", []string{"a.h", "b.h"}, []string{"// a"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 header names given for 1 header sources")
	var rtcErr *Error
	require.False(t, errors.As(err, &rtcErr))
}

func TestNullProgram(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("hiprtc not available: %v", err)
	}
	var prog Program
	err := prog.AddNameExpression("&kernel")
	require.Error(t, err)
	var rtcErr *Error
	require.True(t, errors.As(err, &rtcErr))
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))
}

func TestProgram(t *testing.T) {
	if err := Load(); err != nil {
		t.Skipf("hiprtc not available: %v", err)
	}
	source := `
#include "factor.h"
template <typename T>
__global__ void scale(T *x, int n) {
	int i = blockIdx.x * blockDim.x + threadIdx.x;
	if (i < n) x[i] *= FACTOR;
}
`
	prog, err := CreateProgram(source, "scale.hip", []string{"factor.h"}, []string{"#define FACTOR 3"})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, prog.Destroy())
		require.Equal(t, Program(0), prog)
	}()

	// Lowered names are not available before compilation.
	require.NoError(t, prog.AddNameExpression("&scale<float>"))
	_, err = prog.LoweredName("&scale<float>")
	require.Error(t, err)

	options := []string{"-O3"}
	if err := hip.Load(); err == nil {
		if count, _ := hip.DeviceCount(); count > 0 {
			options = append(options, ArchOption(capture(hip.Platform()).Test(t), capture(DeviceArch(0)).Test(t))...)
		}
	}
	require.NoError(t, prog.Compile(options...))
	log := capture(prog.Log()).Test(t)
	t.Logf("compilation log: %q", log)
	code := capture(prog.Code()).Test(t)
	require.NotEmpty(t, code)
	lowered := capture(prog.LoweredName("&scale<float>")).Test(t)
	require.NotEmpty(t, lowered)
	require.NotEqual(t, "scale", lowered)
	t.Logf("lowered name: %s", lowered)
}
