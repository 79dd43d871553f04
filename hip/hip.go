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

// Package hip is a thin binding to the HIP GPU runtime (libamdhip64.so on AMD, libnvhip64.so on NVIDIA).
//
// It exposes device management, device memory allocation and copies, streams, events, loading of compiled code
// objects and kernel launches. The native library is located and opened lazily on the first call (see Load),
// so programs linking this package run fine on machines without a GPU, until they actually use it.
//
// Every native status code different from success is returned as an *Error, which wraps the Status value
// (so errors.Is(err, hip.ErrorNotFound) works) and is classified in a status.Category (see package status).
//
// Handles (Stream, Event, Module, Function and DevicePtr) are plain values: they must be released explicitly
// with their Destroy/Unload/Free methods, there are no finalizers. Releasing an invalid (or already released)
// handle returns the native error, it never crashes the program on the Go side.
//
// Concurrency: the native runtime is thread-safe, and so are these functions. Notice however that the
// "current device" (SetDevice) is per OS thread, so goroutines that depend on it should use runtime.LockOSThread.
package hip
