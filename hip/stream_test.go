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
	"time"

	"github.com/gomlx/gohip/status"
	"github.com/stretchr/testify/require"
)

func TestQueryResult(t *testing.T) {
	done, err := queryResult("hipStreamQuery", Success)
	require.NoError(t, err)
	require.True(t, done)

	done, err = queryResult("hipStreamQuery", ErrorNotReady)
	require.NoError(t, err)
	require.False(t, done)

	done, err = queryResult("hipEventQuery", ErrorInvalidHandle)
	require.ErrorIs(t, err, ErrorInvalidHandle)
	require.False(t, done)
}

func TestHandleStrings(t *testing.T) {
	require.Equal(t, "Stream(default)", DefaultStream.String())
	require.Equal(t, "Stream(0x10)", Stream(16).String())
	require.Equal(t, "Event(0x20)", Event(32).String())
	require.Equal(t, 1500*time.Microsecond, millisecondsToDuration(1.5))
}

func TestDestroyNullHandles(t *testing.T) {
	// Null handles are rejected without reaching the runtime, so this doesn't require a GPU.
	var stream Stream
	err := stream.Destroy()
	require.ErrorIs(t, err, ErrorInvalidHandle)
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))
	var event Event
	require.ErrorIs(t, event.Destroy(), ErrorInvalidHandle)
	var module Module
	require.ErrorIs(t, module.Unload(), ErrorInvalidHandle)
}

func TestStream(t *testing.T) {
	requireRuntime(t)
	stream, err := CreateStream()
	require.NoError(t, err)
	require.NotEqual(t, DefaultStream, stream)
	require.NoError(t, stream.Synchronize())
	done, err := stream.Query()
	require.NoError(t, err)
	require.True(t, done)
	require.NoError(t, stream.Destroy())
	require.Equal(t, DefaultStream, stream)

	// A destroyed stream can't be destroyed again.
	err = stream.Destroy()
	require.ErrorIs(t, err, ErrorInvalidHandle)

	// The default stream can be synchronized, but not destroyed.
	require.NoError(t, DefaultStream.Synchronize())
	defaultStream := DefaultStream
	err = defaultStream.Destroy()
	require.ErrorIs(t, err, ErrorInvalidHandle)
	require.Equal(t, status.CategoryInvalidUsage, status.CategoryOf(err))
}

func TestEvents(t *testing.T) {
	requireRuntime(t)
	start, err := CreateEvent()
	require.NoError(t, err)
	defer func() { require.NoError(t, start.Destroy()) }()
	stop, err := CreateEventWithFlags(EventBlockingSync)
	require.NoError(t, err)
	defer func() { require.NoError(t, stop.Destroy()) }()
	stream, err := CreateStream()
	require.NoError(t, err)
	defer func() { require.NoError(t, stream.Destroy()) }()

	const size = 64 << 20
	host, err := HostMalloc(size, HostMallocDefault, false)
	require.NoError(t, err)
	defer func() { require.NoError(t, host.Free()) }()
	ptr, err := Malloc(size)
	require.NoError(t, err)
	defer func() { require.NoError(t, ptr.Free()) }()

	require.NoError(t, start.Record(stream))
	require.NoError(t, MemcpyHtoDAsync(ptr, host, stream))
	require.NoError(t, stop.Record(stream))
	require.NoError(t, stop.Synchronize())
	done, err := stop.Query()
	require.NoError(t, err)
	require.True(t, done)

	elapsed, err := EventElapsedTime(start, stop)
	require.NoError(t, err)
	require.Greater(t, elapsed, time.Duration(0))
	t.Logf("async copy of 64MiB took %s", elapsed)

	// Events created without timing can't be measured.
	noTiming, err := CreateEventWithFlags(EventDisableTiming)
	require.NoError(t, err)
	require.NoError(t, noTiming.Record(DefaultStream))
	require.NoError(t, noTiming.Synchronize())
	_, err = EventElapsedTime(start, noTiming)
	require.Error(t, err)

	// A destroyed event can't be destroyed again.
	require.NoError(t, noTiming.Destroy())
	require.Equal(t, Event(0), noTiming)
	require.ErrorIs(t, noTiming.Destroy(), ErrorInvalidHandle)
}
