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
	"flag"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

var flagDevice = flag.Int("device", 0, "HIP device used by the tests that require a GPU")

func init() {
	klog.InitFlags(nil)
}

// requireRuntime skips the test if the HIP runtime or a device is not available. Otherwise, it locks the
// test goroutine to its OS thread and selects the device set with --device.
func requireRuntime(tb testing.TB) {
	tb.Helper()
	if err := Load(); err != nil {
		tb.Skipf("HIP runtime not available: %v", err)
	}
	count, err := DeviceCount()
	if err != nil || count == 0 {
		tb.Skipf("No HIP device available (count=%d, err=%v)", count, err)
	}
	runtime.LockOSThread()
	tb.Cleanup(runtime.UnlockOSThread)
	require.NoError(tb, SetDevice(Device(*flagDevice)))
}

func TestLaunchParamEnd(t *testing.T) {
	require.Equal(t, uintptr(3), launchParamEnd(PlatformAMD))
	require.Equal(t, uintptr(0), launchParamEnd(PlatformNVIDIA))
}

func TestLoadLibraryUnknownPlatform(t *testing.T) {
	_, err := loadLibrary("tpu")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown platform")
}

func TestLoad(t *testing.T) {
	err := Load()
	if err != nil {
		require.False(t, IsLoaded())
		// Every wrapper reports the same load failure.
		_, err2 := DeviceCount()
		require.Equal(t, err.Error(), err2.Error())
		_, err2 = Malloc(16)
		require.Equal(t, err.Error(), err2.Error())
		t.Skipf("HIP runtime not available: %v", err)
	}
	require.True(t, IsLoaded())
	require.NoError(t, Load()) // Idempotent.
	platform, err := Platform()
	require.NoError(t, err)
	require.Contains(t, []string{PlatformAMD, PlatformNVIDIA}, platform)
	libPath, err := LibraryPath()
	require.NoError(t, err)
	t.Logf("HIP runtime for %q loaded from %q", platform, libPath)
}
